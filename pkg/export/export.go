package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/freightsim/core/report"
)

// Row is one freight outcome of a run.
type Row struct {
	RunID          string  `json:"run_id"`
	Strategy       string  `json:"strategy"`
	FreightID      string  `json:"freight_id"`
	VehicleID      string  `json:"vehicle_id"`
	PickupTarget   float64 `json:"pickup_target"`
	DeliveryTarget float64 `json:"delivery_target"`
	CompletionTime float64 `json:"completion_time"`
	DistanceKm     float64 `json:"distance_km"`
	Success        bool    `json:"success"`
}

// Rows flattens the freight results of recs in order.
func Rows(recs []*report.RunRecord) []Row {
	var rows []Row
	for _, rec := range recs {
		for _, r := range rec.Freights {
			rows = append(rows, Row{
				RunID:          rec.RunID,
				Strategy:       rec.Strategy,
				FreightID:      r.FreightID,
				VehicleID:      r.VehicleID,
				PickupTarget:   r.PickupTarget,
				DeliveryTarget: r.DeliveryTarget,
				CompletionTime: r.CompletionTime,
				DistanceKm:     r.DistanceKm,
				Success:        r.Success,
			})
		}
	}
	return rows
}

// WriteJSON writes the freight results of recs to w as a JSON array.
func WriteJSON(w io.Writer, recs []*report.RunRecord) error {
	rows := Rows(recs)
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the freight results of recs to w in CSV format.
func WriteCSV(w io.Writer, recs []*report.RunRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "strategy", "freight_id", "vehicle_id", "pickup_target", "delivery_target", "completion_time", "distance_km", "success"}); err != nil {
		return err
	}
	for _, r := range Rows(recs) {
		rec := []string{
			r.RunID,
			r.Strategy,
			r.FreightID,
			r.VehicleID,
			strconv.FormatFloat(r.PickupTarget, 'f', -1, 64),
			strconv.FormatFloat(r.DeliveryTarget, 'f', -1, 64),
			strconv.FormatFloat(r.CompletionTime, 'f', -1, 64),
			strconv.FormatFloat(r.DistanceKm, 'f', 3, 64),
			strconv.FormatBool(r.Success),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes recs to path. The extension selects the format: .csv
// and .json export freight results, .html renders a comparison chart.
func WriteFile(path string, recs []*report.RunRecord) (err error) {
	var write func(io.Writer, []*report.RunRecord) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = WriteCSV
	case ".json":
		write = WriteJSON
	case ".html":
		write = WriteChart
	default:
		return fmt.Errorf("unsupported export format: %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f, recs)
}
