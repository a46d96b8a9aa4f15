// Package progress defines the callback surface long-running engine runs
// report through.
package progress

// Func receives coarse progress updates as (percent, message) pairs. Engines
// call it between documents or worksheets, never concurrently.
type Func func(percent int, message string)

// Nop discards progress updates.
func Nop(int, string) {}
