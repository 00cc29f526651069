// Package jobs supervises tool runs as single-slot jobs.
//
// The manager tracks at most one active job. Starting a job registers it in
// the slot before the process spawns so cancellation has something to target
// from the first instant; starting another job while one is active simply
// overwrites the slot, leaving the earlier process to finish unsupervised.
// This mirrors a one-task-at-a-time user workflow rather than a queue.
//
// Completion resolution reads the cancellation flag exactly once: a
// cancelled job reports Cancelled even when the killed process also exited
// with an error, and Succeeded beats Failed only when the process exited
// cleanly without a cancel request.
package jobs
