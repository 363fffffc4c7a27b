package evaluator

// DefaultMaxCallDepth is used when Budget.MaxCallDepth is zero.
const DefaultMaxCallDepth = 10000

// Budget holds the resource limits for a program execution.
// Zero values mean the default call depth and no iteration or time limit.
type Budget struct {
	MaxCallDepth  int   `yaml:"maxCallDepth" json:"maxCallDepth"`
	MaxIterations int64 `yaml:"maxIterations" json:"maxIterations"`
	TimeMs        int64 `yaml:"timeMs" json:"timeMs"`
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Iterations int64
	CallDepth  int
	MaxDepth   int
	Calls      int64
}

func (b Budget) callDepthLimit() int {
	if b.MaxCallDepth <= 0 {
		return DefaultMaxCallDepth
	}
	return b.MaxCallDepth
}
