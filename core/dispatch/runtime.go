package dispatch

import (
	"fmt"
	"sync"

	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/model"
)

// RuntimeTable holds the dispatcher's view of every vehicle. Iteration
// follows insertion order. The dispatcher is the only writer.
type RuntimeTable struct {
	mu    sync.RWMutex
	order []string
	infos map[string]*model.VehicleRuntimeInfo
}

// NewRuntimeTable builds the table from the vehicle profiles, preserving
// their order. Duplicate ids keep the first profile.
func NewRuntimeTable(vehicles []model.Vehicle) *RuntimeTable {
	t := &RuntimeTable{infos: make(map[string]*model.VehicleRuntimeInfo, len(vehicles))}
	for _, v := range vehicles {
		if _, ok := t.infos[v.ID]; ok {
			continue
		}
		info := model.NewRuntimeInfo(v)
		t.infos[v.ID] = &info
		t.order = append(t.order, v.ID)
	}
	return t
}

// Len returns the number of vehicles in the table.
func (t *RuntimeTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Get returns a copy of the entry for id.
func (t *RuntimeTable) Get(id string) (model.VehicleRuntimeInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.infos[id]
	if !ok || info == nil {
		return model.VehicleRuntimeInfo{}, false
	}
	return *info, true
}

// Snapshot returns copies of all entries in table order.
func (t *RuntimeTable) Snapshot() []model.VehicleRuntimeInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.VehicleRuntimeInfo, 0, len(t.order))
	for _, id := range t.order {
		if info := t.infos[id]; info != nil {
			out = append(out, *info)
		}
	}
	return out
}

// Commit records the predicted post-trip state of a vehicle.
func (t *RuntimeTable) Commit(id string, availableAt float64, location geo.Coordinate) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.infos[id]
	if !ok || info == nil {
		return fmt.Errorf("vehicle %s not in runtime table", id)
	}
	info.AvailableAt = availableAt
	info.Location = location
	return nil
}

// Eligible returns the entries able to take f at now, in table order.
// Entries with incomplete data are skipped.
func (t *RuntimeTable) Eligible(f model.Freight, now float64) []model.VehicleRuntimeInfo {
	var out []model.VehicleRuntimeInfo
	for _, info := range t.Snapshot() {
		if info.ID == "" || info.SpeedKmh <= 0 {
			continue
		}
		if info.Eligible(f, now) {
			out = append(out, info)
		}
	}
	return out
}
