// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: a freight was handed to a vehicle
//   - UnassignedEvent: no vehicle could take a freight
//   - TripCompletedEvent: a vehicle is back at its base
//   - ImprovementEvent: local search accepted a reassignment
package events
