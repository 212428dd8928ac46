// Package dispatch implements the vehicle selection policies used by the
// simulated dispatcher.
//
// A Strategy orders the freight backlog and picks a vehicle for each freight
// from the dispatcher's RuntimeTable. Four greedy strategies are provided:
//   - FCFS: first eligible vehicle in table order.
//   - Cost: closest vehicle to the pickup.
//   - Distance: shortest three-leg route (vehicle, pickup, delivery, base).
//   - OverallCost: fastest three-leg route given each vehicle's speed.
//
// All strategies share the same eligibility filter (capacity and
// availability) and break ties in favour of the vehicle listed first in the
// table, which is the order vehicles were loaded in.
//
// Strategies are registered by name and created with NewStrategy.
package dispatch
