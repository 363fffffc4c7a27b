//go:build windows

package evaluator

import (
	"syscall"
	"unsafe"
)

// time.Now has coarse resolution on some Windows versions, so trace
// durations read the performance counter directly.
var (
	kernel32DLL = syscall.NewLazyDLL("kernel32.dll")
	qpcProc     = kernel32DLL.NewProc("QueryPerformanceCounter")
	qpfProc     = kernel32DLL.NewProc("QueryPerformanceFrequency")
	qpcFreq     int64
)

func init() {
	qpfProc.Call(uintptr(unsafe.Pointer(&qpcFreq)))
}

// hiresNow returns the current performance counter value.
func hiresNow() int64 {
	var count int64
	qpcProc.Call(uintptr(unsafe.Pointer(&count)))
	return count
}

// hiresSinceMicros returns the microseconds elapsed since start.
func hiresSinceMicros(start int64) int64 {
	if qpcFreq == 0 {
		return 0
	}
	return (hiresNow() - start) * 1_000_000 / qpcFreq
}
