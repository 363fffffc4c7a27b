// Package help holds the language reference printed by "lox help".
package help

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/lox/pkg/stdlib"
)

// QUICKREF is the overview shown by "lox help" without a topic.
const QUICKREF = `Lox quick reference

  var x = 1;                 declare a variable (nil when no initializer)
  x = x + 1;                 assign to the nearest enclosing binding
  print x;                   write a value and a newline
  { ... }                    open a new scope
  if (c) a; else b;          branch on truthiness
  while (c) body;            loop while truthy
  for (init; cond; incr) s;  loop with optional clauses
  fun f(a, b) { return a; }  declare a function (closures capture scope)
  f(1, 2);                   call; arity must match

Topics: syntax, types, functions, flow, natives, budget, diagnostics, examples
Run "lox help <topic>" for details. Unique prefixes work: "lox help diag".
`

// TopicList is the display order of topics.
var TopicList = []string{"syntax", "types", "functions", "flow", "natives", "budget", "diagnostics", "examples"}

// Topics maps each topic name to its text.
var Topics = map[string]string{
	"syntax": `Syntax

Statements end with ';'. Comments run from // to the end of the line.
Precedence, lowest first:
  =             assignment, right-associative; target must be a variable
  or            logical or, short-circuit
  and           logical and, short-circuit
  == !=         equality
  > >= < <=     comparison (numbers only)
  + -           addition, subtraction, string concatenation
  * /           multiplication, division
  ! -           unary not, negation
  f(args)       call
`,
	"types": `Types

  number     double precision: 1, 2.5, 0.125
  string     "double quoted", may span lines, no escapes
  boolean    true, false
  nil        the absence of a value
  function   user functions print as <fn name>, natives as <native fn name>

Only false and nil are falsy. 0 and "" are truthy.
Equality never converts: "1" == 1 is false.
`,
	"functions": `Functions

  fun add(a, b) { return a + b; }

Functions are values. A function closes over the scope it was declared in,
so inner functions keep outer variables alive:

  fun makeCounter() {
    var i = 0;
    fun count() { i = i + 1; return i; }
    return count;
  }

return without a value returns nil. return outside a function is a syntax
error. At most 255 parameters and arguments.
`,
	"flow": `Control flow

  if (cond) stmt; else stmt;
  while (cond) stmt;
  for (var i = 0; i < 3; i = i + 1) stmt;

Every clause of for is optional; an empty condition loops forever.
The for variable is scoped to the loop. There is no break or continue.
`,
	"natives": `Native functions

  clock()    seconds since the Unix epoch, with a fractional part
`,
	"budget": `Execution budget

Configured in .loxrc.yaml or ~/.lox/config.yaml:

  budget:
    maxCallDepth: 10000  # deeper calls fail with "Stack overflow."
    maxIterations: 0     # loop iterations per run, 0 = unlimited
    timeMs: 0            # wall clock per run, 0 = unlimited

Ctrl-C stops a running program in the REPL.
`,
	"diagnostics": `Diagnostics

Errors print as "[line N] Error: message" (or JSON with --json).

  E_LEX          unexpected character, unterminated string     exit 65
  E_PARSE        syntax error, first one only                   exit 65
  E_RUNTIME      type error, undefined variable, arity         exit 70
  E_BUDGET       call depth, iteration or time limit            exit 70
  E_CANCELLED    interrupted                                    exit 70
  E_DUP_BINDING, E_DUP_PARAM, E_SELF_INIT, E_UNBOUND            lox check
`,
	"examples": `Examples

  fun fib(n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
  }
  print fib(20);

  var start = clock();
  for (var i = 0; i < 3; i = i + 1) print i;
  print clock() - start;
`,
}

// MatchTopic resolves an exact topic name or a unique prefix of one.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	if query != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, query) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown topic %q", query)
	default:
		return "", "", fmt.Errorf("ambiguous topic %q: %s", query, strings.Join(matches, ", "))
	}
}

// NativesIndex lists the registered native functions with their arity.
func NativesIndex(reg *stdlib.Registry) string {
	var b strings.Builder
	names := reg.Names()
	for _, name := range names {
		fn := reg.Get(name)
		params := make([]string, fn.Arity)
		for i := range params {
			params[i] = fmt.Sprintf("arg%d", i+1)
		}
		fmt.Fprintf(&b, "  %s(%s)\n", name, strings.Join(params, ", "))
	}
	fmt.Fprintf(&b, "Total: %d functions\n", len(names))
	return b.String()
}
