// Package optimize refines freight assignments.
//
// Both optimizers share the same objective: every assigned freight is an
// independent round trip from the vehicle start to the pickup, then the
// delivery, then the vehicle base. LocalSearch improves an existing
// assignment with single-freight moves; LPSolver solves the linear
// relaxation of the assignment problem and rounds it.
package optimize
