package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/model"
)

// Status is the termination state reported by a Solver.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusTimeLimit  Status = "time_limit"
	StatusError      Status = "error"
)

// ErrProblemTooLarge is returned when the LP exceeds the solver's variable limit.
var ErrProblemTooLarge = errors.New("assignment problem too large")

// Problem is the input of an exact assignment solver.
type Problem struct {
	Freights  []model.Freight
	Vehicles  []model.Vehicle
	Matrix    DistanceMatrix
	TimeLimit time.Duration
}

// Solution is what a Solver returns. Unless the status is optimal or
// feasible the objective is +Inf and the assignment nil.
type Solution struct {
	Assignment model.Assignment `json:"assignment"`
	Objective  float64          `json:"objective"`
	// Bound is a lower bound on the optimum.
	Bound   float64       `json:"bound"`
	Gap     float64       `json:"gap"`
	Status  Status        `json:"status"`
	Elapsed time.Duration `json:"elapsed"`
}

// Solver computes a freight to vehicle assignment minimizing total distance.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

func failed(status Status) Solution {
	return Solution{Objective: math.Inf(1), Bound: math.Inf(-1), Gap: math.Inf(1), Status: status}
}

// DefaultMaxVariables bounds the size of the dense simplex tableau.
const DefaultMaxVariables = 20000

// LPSolver solves the linear relaxation of the capacitated assignment with
// the simplex method, then rounds it into a capacity respecting assignment.
// The relaxation optimum is reported as the bound.
type LPSolver struct {
	MaxVariables int
	Tolerance    float64
	log          logger.Logger
}

// NewLPSolver returns an LPSolver with default limits. log may be nil.
func NewLPSolver(log logger.Logger) *LPSolver {
	return &LPSolver{MaxVariables: DefaultMaxVariables, Tolerance: 1e-9, log: logger.OrNop(log)}
}

// lpSolve points to the function used to solve the standard form LP. It can
// be overridden in tests to simulate solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// pair is the LP column of freight j on vehicle i.
type pair struct{ i, j int }

// Solve implements Solver. The simplex cannot be interrupted: when ctx is
// done or the time limit expires Solve returns StatusTimeLimit right away and
// the running solve finishes in the background, its result discarded.
func (s *LPSolver) Solve(ctx context.Context, p Problem) (Solution, error) {
	start := time.Now()
	log := logger.OrNop(s.log)
	if !p.Matrix.fits(len(p.Vehicles), len(p.Freights)) {
		p.Matrix = BuildDistanceMatrix(p.Freights, p.Vehicles)
	}
	if len(p.Freights) == 0 {
		return Solution{Assignment: model.Assignment{}, Status: StatusOptimal, Elapsed: time.Since(start)}, nil
	}

	var cols []pair
	for j, f := range p.Freights {
		n := 0
		for i, v := range p.Vehicles {
			if v.CanCarry(f) {
				cols = append(cols, pair{i, j})
				n++
			}
		}
		if n == 0 {
			log.Warnf("solver: freight %s fits no vehicle", f.ID)
			sol := failed(StatusInfeasible)
			sol.Elapsed = time.Since(start)
			return sol, nil
		}
	}
	limit := s.MaxVariables
	if limit <= 0 {
		limit = DefaultMaxVariables
	}
	if len(cols)+len(p.Vehicles) > limit {
		sol := failed(StatusError)
		sol.Elapsed = time.Since(start)
		return sol, fmt.Errorf("%w: %d variables", ErrProblemTooLarge, len(cols)+len(p.Vehicles))
	}

	c, a, b := buildStandardForm(p, cols)

	if p.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.TimeLimit)
		defer cancel()
	}
	type outcome struct {
		f   float64
		x   []float64
		err error
	}
	done := make(chan outcome, 1)
	solve, tol := lpSolve, s.Tolerance
	go func() {
		f, x, err := solve(c, a, b, tol)
		done <- outcome{f, x, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		sol := failed(StatusTimeLimit)
		sol.Elapsed = time.Since(start)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warnf("solver: time limit of %s reached", p.TimeLimit)
			return sol, nil
		}
		return sol, ctx.Err()
	case out = <-done:
	}
	if out.err != nil {
		sol := failed(StatusError)
		if errors.Is(out.err, lp.ErrInfeasible) {
			sol.Status = StatusInfeasible
		}
		sol.Elapsed = time.Since(start)
		log.Warnf("solver: simplex: %v", out.err)
		if sol.Status == StatusInfeasible {
			return sol, nil
		}
		return sol, fmt.Errorf("simplex: %w", out.err)
	}

	asn, integral, ok := roundSolution(p, cols, out.x)
	if !ok {
		log.Warnf("solver: rounding the relaxation violates capacity")
		sol := failed(StatusInfeasible)
		sol.Bound = out.f
		sol.Elapsed = time.Since(start)
		return sol, nil
	}
	obj := Objective(asn, p.Freights, p.Vehicles)
	sol := Solution{Assignment: asn, Objective: obj, Bound: out.f, Status: StatusFeasible, Elapsed: time.Since(start)}
	if obj > 0 {
		sol.Gap = math.Max(0, (obj-out.f)/obj)
	}
	if integral || sol.Gap < 1e-9 {
		sol.Status = StatusOptimal
		sol.Gap = 0
	}
	log.Infof("solver: status=%s objective=%.3f bound=%.3f gap=%.4f", sol.Status, sol.Objective, sol.Bound, sol.Gap)
	return sol, nil
}

// buildStandardForm lays out
//
//	minimize   sum km[i][j] x_ij
//	subject to sum_i x_ij = 1              for every freight j
//	           sum_j w_j x_ij + s_i = cap_i for every vehicle i
//	           x, s >= 0
//
// with one column per carrying pair followed by one slack per vehicle.
func buildStandardForm(p Problem, cols []pair) ([]float64, *mat.Dense, []float64) {
	nf, nv := len(p.Freights), len(p.Vehicles)
	n := len(cols) + nv
	c := make([]float64, n)
	a := mat.NewDense(nf+nv, n, nil)
	b := make([]float64, nf+nv)
	for k, col := range cols {
		c[k] = p.Matrix.Km[col.i][col.j]
		a.Set(col.j, k, 1)
		a.Set(nf+col.i, k, p.Freights[col.j].Weight)
	}
	for j := 0; j < nf; j++ {
		b[j] = 1
	}
	for i, v := range p.Vehicles {
		a.Set(nf+i, len(cols)+i, 1)
		b[nf+i] = v.Capacity
	}
	return c, a, b
}

// roundSolution turns the fractional solution into an assignment. Freights
// with the most decided column go first and take the highest valued vehicle
// that still has room, then the cheapest one.
func roundSolution(p Problem, cols []pair, x []float64) (model.Assignment, bool, bool) {
	const tol = 1e-6
	type cand struct {
		i  int
		x  float64
		km float64
	}
	per := make([][]cand, len(p.Freights))
	integral := true
	for k, col := range cols {
		v := 0.0
		if k < len(x) {
			v = x[k]
		}
		if v > tol && v < 1-tol {
			integral = false
		}
		per[col.j] = append(per[col.j], cand{i: col.i, x: v, km: p.Matrix.Km[col.i][col.j]})
	}
	order := make([]int, len(p.Freights))
	best := make([]float64, len(p.Freights))
	for j, cs := range per {
		order[j] = j
		sort.SliceStable(cs, func(a, b int) bool {
			if cs[a].x != cs[b].x {
				return cs[a].x > cs[b].x
			}
			return cs[a].km < cs[b].km
		})
		if len(cs) > 0 {
			best[j] = cs[0].x
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return best[order[a]] > best[order[b]] })

	room := make([]float64, len(p.Vehicles))
	for i, v := range p.Vehicles {
		room[i] = v.Capacity
	}
	asn := make(model.Assignment, len(p.Freights))
	for _, j := range order {
		f := p.Freights[j]
		chosen := -1
		for _, c := range per[j] {
			if c.x > tol && room[c.i] >= f.Weight {
				chosen = c.i
				break
			}
		}
		if chosen < 0 {
			cheapest := math.Inf(1)
			for _, c := range per[j] {
				if room[c.i] >= f.Weight && c.km < cheapest {
					chosen, cheapest = c.i, c.km
				}
			}
		}
		if chosen < 0 {
			return nil, false, false
		}
		room[chosen] -= f.Weight
		asn[f.ID] = p.Vehicles[chosen].ID
	}
	return asn, integral, true
}
