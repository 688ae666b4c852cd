// Package countdown implements a one-shot blocking countdown timer.
//
// A Timer holds a target duration set with Set. Start blocks the caller
// until the duration has elapsed and returns the remaining time in
// milliseconds: zero on normal expiry, or what was left when the run was
// cancelled through its context or Cancel.
//
// Each Start arms a fresh one-shot timer on its own goroutine; the
// goroutine and timer are torn down once the run ends, so nothing leaks
// between runs. The Timer itself can be started again after a run ends.
package countdown
