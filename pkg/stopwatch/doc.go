// Package stopwatch implements a pausable elapsed-time stopwatch.
//
// A Stopwatch accumulates running time across any number of
// start/suspend/resume/stop cycles and rejects operations that are not
// legal in its current state.
//
// # States
//
//	NOT_STARTED --Start--> RUNNING --Suspend--> SUSPENDED
//	     ^                  |   ^                  |
//	     |                  |   +------Resume------+
//	     +------Stop--------+                      |
//	     +------Stop-------------------------------+
//
// Reset returns to NOT_STARTED from any state and zeroes the accumulated
// duration. Illegal operations return an error matching
// timeerr.ErrInvalidState and leave the stopwatch unchanged.
//
// # Duration Accounting
//
// Nothing ticks. Suspend and Stop fold the finished interval into the
// accumulated total; Duration adds the open interval lazily at query time.
// A suspended stopwatch therefore reports a frozen total regardless of how
// long it stays suspended.
//
// Stop keeps the accumulated total queryable and makes the stopwatch
// immediately restartable. A later Start continues accumulating onto that
// total; only Reset zeroes it.
//
// # Concurrency
//
// All methods are safe for concurrent use. Mutating operations hold an
// exclusive lock for their whole duration so the timestamps and the total
// are always updated together. Status events and state change callbacks
// are delivered after the lock is released.
package stopwatch
