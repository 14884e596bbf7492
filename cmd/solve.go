package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/a100/app"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/report"
	"github.com/kilianp07/a100/core/scheduler"
	"github.com/kilianp07/a100/pkg/export"
)

var (
	problemPath  string
	outputFormat string
	withWorkload bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a problem file and print the schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := scheduler.LoadProblem(problemPath)
		if err != nil {
			return err
		}
		return solveAndPrint(cmd, p)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Solve the built-in six zone instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return solveAndPrint(cmd, model.Demo())
	},
}

func init() {
	solveCmd.Flags().StringVarP(&problemPath, "file", "f", "", "problem file (yaml or json)")
	_ = solveCmd.MarkFlagRequired("file")
	for _, c := range []*cobra.Command{solveCmd, demoCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: json, csv or table")
		c.Flags().BoolVar(&withWorkload, "workload", false, "also print the per-slot workload as csv")
		rootCmd.AddCommand(c)
	}
}

func solveAndPrint(cmd *cobra.Command, p model.Problem) error {
	switch outputFormat {
	case "json", "csv", "table":
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// one-shot solves do not publish
	cfg.MQTT.Broker = ""
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Scheduler.MakeSchedule(ctx, p)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := writeEntries(out, report.Entries(p, res.Items)); err != nil {
		return err
	}
	if withWorkload {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		return export.WriteWorkloadCSV(out, report.ComputeWorkload(p, res.Items))
	}
	return nil
}

func writeEntries(w io.Writer, entries []report.Entry) error {
	switch outputFormat {
	case "json":
		return export.WriteJSON(w, entries)
	case "csv":
		return export.WriteCSV(w, entries)
	default:
		return export.WriteTable(w, entries)
	}
}
