// Package sim runs freight dispatch simulations.
//
// A Simulation owns a scheduler, one VehicleProcess per vehicle and a single
// DispatcherProcess. Every call to Run builds these from scratch, so several
// runs can execute concurrently on different inputs or strategies.
package sim
