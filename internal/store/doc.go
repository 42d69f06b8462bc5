// Package store defines interfaces for task status persistence. These
// interfaces abstract the durable record store and the status cache from the
// task engine, so the engine never depends on a specific database or cache
// technology.
package store
