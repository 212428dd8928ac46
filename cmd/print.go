package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kilianp07/freightsim/core/report"
)

func printRecords(w io.Writer, recs []*report.RunRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTRATEGY\tASSIGNED\tUNASSIGNED\tDISTANCE_KM\tUTILIZATION\tLOCAL_SEARCH_KM\tSOLVER")
	for _, r := range recs {
		ls := "-"
		if r.LocalSearch != nil {
			ls = fmt.Sprintf("%.2f (-%.1f%%)", r.LocalSearch.Objective, r.LocalSearch.ImprovementPct)
		}
		solver := "-"
		if r.Solver != nil {
			solver = r.Solver.Status
			if r.Solver.Objective != nil {
				solver = fmt.Sprintf("%s %.2f", r.Solver.Status, *r.Solver.Objective)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.3f\t%s\t%s\n",
			r.RunID, r.Strategy, r.Summary.Assigned, r.Summary.Unassigned,
			r.Summary.TotalDistanceKm, r.Summary.MeanUtilization, ls, solver)
	}
	return tw.Flush()
}
