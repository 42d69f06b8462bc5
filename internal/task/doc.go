// Package task runs generation tasks in the background. It owns an unbounded
// in-memory queue, a fixed pool of workers that drain it, the per-task status
// lifecycle (queued, processing, completed or failed) and the propagation of
// every status change to the durable record store and the status cache.
//
// The queue is not persisted: tasks that are still waiting when the process
// stops are lost, and their records stay queued.
package task
