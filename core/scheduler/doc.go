// Package scheduler implements the discrete-event clock driving a simulation.
//
// Processes are explicit state machines implementing Process. A process
// suspends itself by asking the Scheduler to resume it after a delay, or by
// waiting on a Mailbox. Events execute in non-decreasing time order and events
// sharing a timestamp run in the order they were scheduled, which keeps
// simulation outcomes deterministic.
package scheduler
