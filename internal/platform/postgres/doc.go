// Package postgres provides the PostgreSQL implementation of the
// store.TaskRecordStore interface, the authoritative record of every task's
// lifecycle. It handles the details of query execution, mapping database
// errors onto store errors, and applying the embedded schema migrations.
package postgres
