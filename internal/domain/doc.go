// Package domain contains the core entities of the generation service: the
// closed set of generation kinds, the task status state machine, the immutable
// task descriptor placed on the queue, and the status record projected to the
// durable store and the status cache. It has no infrastructure dependencies.
package domain
