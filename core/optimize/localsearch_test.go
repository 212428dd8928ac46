package optimize

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/freightsim/core/events"
	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// randomInstance builds a reproducible instance with a feasible initial
// assignment that ignores distances.
func randomInstance(seed int64, nf, nv int) ([]model.Freight, []model.Vehicle, model.Assignment) {
	rng := rand.New(rand.NewSource(seed))
	pt := func() geo.Coordinate {
		return geo.Coordinate{Lat: 45 + rng.Float64(), Lon: 4 + rng.Float64()}
	}
	vehicles := make([]model.Vehicle, nv)
	for i := range vehicles {
		vehicles[i] = model.Vehicle{ID: string(rune('A' + i)), Start: pt(), Capacity: 100, SpeedKmh: 50}
	}
	freights := make([]model.Freight, nf)
	for j := range freights {
		freights[j] = model.Freight{ID: "f" + string(rune('a'+j)), Weight: float64(5 + rng.Intn(20)), Pickup: pt(), Delivery: pt()}
	}
	a := make(model.Assignment)
	room := make([]float64, nv)
	for i, v := range vehicles {
		room[i] = v.Capacity
	}
	for j, f := range freights {
		for k := 0; k < nv; k++ {
			i := (j + k) % nv
			if room[i] >= f.Weight {
				room[i] -= f.Weight
				a[f.ID] = vehicles[i].ID
				break
			}
		}
	}
	return freights, vehicles, a
}

func capacities(vehicles []model.Vehicle) map[string]float64 {
	m := make(map[string]float64, len(vehicles))
	for _, v := range vehicles {
		m[v.ID] = v.Capacity
	}
	return m
}

func TestLocalSearchNeverWorsensAndRespectsCapacity(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		freights, vehicles, initial := randomInstance(seed, 18, 4)
		ls := NewLocalSearch(Options{}, nil, nil)
		res, err := ls.Run(context.Background(), initial, freights, vehicles)
		require.NoError(t, err)

		assert.InDelta(t, Objective(initial, freights, vehicles), res.InitialObjective, 1e-9)
		assert.LessOrEqual(t, res.Objective, res.InitialObjective, "seed %d", seed)
		assert.InDelta(t, Objective(res.Assignment, freights, vehicles), res.Objective, 1e-6)
		caps := capacities(vehicles)
		for vid, load := range Loads(res.Assignment, freights) {
			assert.LessOrEqual(t, load, caps[vid], "seed %d vehicle %s", seed, vid)
		}
		assert.Len(t, res.Assignment, len(initial))
		assert.GreaterOrEqual(t, res.ImprovementPct, 0.0)
	}
}

func TestLocalSearchIsIdempotentAtLocalOptimum(t *testing.T) {
	freights, vehicles, initial := randomInstance(42, 15, 3)
	ls := NewLocalSearch(Options{}, nil, nil)
	first, err := ls.Run(context.Background(), initial, freights, vehicles)
	require.NoError(t, err)
	second, err := ls.Run(context.Background(), first.Assignment, freights, vehicles)
	require.NoError(t, err)
	assert.Zero(t, second.Iterations)
	assert.Equal(t, first.Assignment, second.Assignment)
	assert.Equal(t, first.Objective, second.Objective)
	assert.Zero(t, second.ImprovementPct)
}

func TestLocalSearchMovesToNearVehicle(t *testing.T) {
	vehicles := []model.Vehicle{
		{ID: "far", Start: geo.Coordinate{Lat: 50, Lon: 10}, Capacity: 10},
		{ID: "near", Start: geo.Coordinate{Lat: 45, Lon: 4}, Capacity: 10},
	}
	freights := []model.Freight{{ID: "f", Weight: 5, Pickup: geo.Coordinate{Lat: 45.1, Lon: 4}, Delivery: geo.Coordinate{Lat: 45.2, Lon: 4}}}
	bus := eventbus.New()
	ch := bus.Subscribe()
	ls := NewLocalSearch(Options{}, nil, bus)
	res, err := ls.Run(context.Background(), model.Assignment{"f": "far"}, freights, vehicles)
	require.NoError(t, err)
	assert.Equal(t, "near", res.Assignment["f"])
	assert.Equal(t, 1, res.Iterations)
	assert.Greater(t, res.ImprovementPct, 90.0)

	ev := (<-ch).(events.ImprovementEvent)
	assert.Equal(t, "far", ev.From)
	assert.Equal(t, "near", ev.To)
	assert.Less(t, ev.Delta, 0.0)
}

func TestLocalSearchCapacityBlocksMove(t *testing.T) {
	vehicles := []model.Vehicle{
		{ID: "far", Start: geo.Coordinate{Lat: 50, Lon: 10}, Capacity: 10},
		{ID: "near", Start: geo.Coordinate{Lat: 45, Lon: 4}, Capacity: 4},
	}
	freights := []model.Freight{{ID: "f", Weight: 5, Pickup: geo.Coordinate{Lat: 45.1, Lon: 4}, Delivery: geo.Coordinate{Lat: 45.2, Lon: 4}}}
	res, err := NewLocalSearch(Options{}, nil, nil).Run(context.Background(), model.Assignment{"f": "far"}, freights, vehicles)
	require.NoError(t, err)
	assert.Equal(t, "far", res.Assignment["f"])
	assert.Zero(t, res.Iterations)
}

func TestLocalSearchSkipsUnknownReferences(t *testing.T) {
	freights, vehicles, initial := randomInstance(7, 5, 2)
	initial["fa"] = "ghost"
	initial["missing"] = "A"
	res, err := NewLocalSearch(Options{}, nil, nil).Run(context.Background(), initial, freights, vehicles)
	require.NoError(t, err)
	assert.Equal(t, []string{"fa", "missing"}, res.Skipped)
	assert.Equal(t, "ghost", res.Assignment["fa"])
	assert.Equal(t, "A", res.Assignment["missing"])
}

func TestLocalSearchBudgets(t *testing.T) {
	freights, vehicles, initial := randomInstance(3, 20, 4)

	res, err := NewLocalSearch(Options{MaxIterations: 1}, nil, nil).Run(context.Background(), initial, freights, vehicles)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 1)

	ls := NewLocalSearch(Options{TimeLimit: time.Second}, nil, nil)
	t0 := time.Now()
	calls := 0
	ls.now = func() time.Time {
		calls++
		if calls == 1 {
			return t0
		}
		return t0.Add(time.Hour)
	}
	res, err = ls.Run(context.Background(), initial, freights, vehicles)
	require.NoError(t, err)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, res.InitialObjective, res.Objective)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLocalSearch(Options{}, nil, nil).Run(ctx, initial, freights, vehicles)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLocalSearch(Options{Epsilon: -1}, nil, nil).Run(context.Background(), initial, freights, vehicles)
	assert.Error(t, err)
}

func TestOptionsZeroMeansDefault(t *testing.T) {
	o := Options{}
	o.SetDefaults()
	assert.Equal(t, DefaultMaxIterations, o.MaxIterations)
	assert.Equal(t, DefaultEpsilon, o.Epsilon)
	assert.Zero(t, o.TimeLimit)

	o = Options{MaxIterations: 1, Epsilon: 0.5}
	o.SetDefaults()
	assert.Equal(t, 1, o.MaxIterations)
	assert.Equal(t, 0.5, o.Epsilon)
}

func TestAssignmentFromResults(t *testing.T) {
	a := AssignmentFromResults([]model.FreightResult{
		{FreightID: "f1", VehicleID: "v1", Success: true},
		{FreightID: "f2", VehicleID: model.Unassigned},
	})
	assert.Equal(t, model.Assignment{"f1": "v1"}, a)
}

func TestObjectiveIgnoresUnknownVehicles(t *testing.T) {
	v := model.Vehicle{ID: "v", Start: geo.Coordinate{Lat: 45, Lon: 4}}
	f := model.Freight{ID: "f", Pickup: geo.Coordinate{Lat: 45.1, Lon: 4}, Delivery: geo.Coordinate{Lat: 45.2, Lon: 4}}
	g := model.Freight{ID: "g", Pickup: geo.Coordinate{Lat: 45.1, Lon: 4}, Delivery: geo.Coordinate{Lat: 45.2, Lon: 4}}
	got := Objective(model.Assignment{"f": "v", "g": "nope"}, []model.Freight{f, g}, []model.Vehicle{v})
	assert.InDelta(t, RoundTrip(v, f), got, 1e-12)
	assert.InDelta(t, 2*geo.Haversine(v.Start, f.Delivery), RoundTrip(v, f), 1e-9)
}
