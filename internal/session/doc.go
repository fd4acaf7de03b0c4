// Package session owns the lifecycle of the single active task stream.
//
// A [Controller] holds at most one session at a time. Starting a new session closes the
// previous connection handle before returning the new session's id, and every later call
// is keyed by that id: events for a stale or closed session are dropped without touching
// the panels. The controller never performs I/O itself. Callers open the stream, hand the
// handle over with [Controller.Attach], feed each message line to [Controller.Handle] and
// report transport failures with [Controller.Fail]; the returned [Effect] tells them when to
// schedule the automatic download.
//
//	Idle ──Start──▶ Opening ──Attach──▶ Streaming ──SCRIPT_FINISHED──▶ Finished
//	                   │                    │
//	                   │                    └──transport error──▶ Failed
//	                   └──Start (again)──▶ Superseded ──▶ Opening
package session
