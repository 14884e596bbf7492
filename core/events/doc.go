// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - SolveEvent: outcome of one MakeSchedule call
package events
