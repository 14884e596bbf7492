// Package export writes schedules and workload tables for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kilianp07/a100/core/report"
)

// WriteJSON writes the schedule entries to w in JSON format.
func WriteJSON(w io.Writer, entries []report.Entry) error {
	if entries == nil {
		entries = []report.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteCSV writes one row per scheduled zone.
func WriteCSV(w io.Writer, entries []report.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"zone", "name", "mode", "start_slot", "end_slot", "start", "end"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(e.Zone),
			e.Name,
			strconv.Itoa(e.Mode),
			strconv.Itoa(e.Start),
			strconv.Itoa(e.End),
			e.StartLabel,
			e.EndLabel,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkloadCSV writes the per-slot usage of every resource. The first
// column holds the slot label.
func WriteWorkloadCSV(w io.Writer, wl report.Workload) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"slot"}, wl.Names...)); err != nil {
		return err
	}
	for i, row := range wl.Usage {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, wl.Rows[i])
		for _, v := range row {
			rec = append(rec, strconv.Itoa(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable prints the entries as aligned text columns.
func WriteTable(w io.Writer, entries []report.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ZONE\tMODE\tSTART\tEND"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.Mode, e.StartLabel, e.EndLabel); err != nil {
			return err
		}
	}
	return tw.Flush()
}
