// Package scheduler turns a zone scheduling problem into a constraint model,
// hands it to an optimization backend and decodes the optimal answer into
// one Item per scheduled zone.
//
// Build and Extract are pure functions. Scheduler wires them to a backend
// and reports every solve on an optional event bus and solve log.
package scheduler
