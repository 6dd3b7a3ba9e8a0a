package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crm-assistant/internal/export"
)

var exportFlags struct {
	start  string
	end    string
	userID int64
	admin  bool
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a CRM snapshot to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		rng, err := flagRange(exportFlags.start, exportFlags.end, cfg.Analysis.DefaultDays)
		if err != nil {
			return err
		}

		agg, rc, err := newAggregator(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rc.Close() //nolint:errcheck

		a, err := agg.FetchAnalysis(cmd.Context(), rng, exportFlags.userID, exportFlags.admin)
		if err != nil {
			return err
		}
		if err := export.WriteXLSX(a, exportFlags.out); err != nil {
			return err
		}

		zap.L().Info("export written",
			zap.String("path", exportFlags.out),
			zap.String("start", rng.Start),
			zap.String("end", rng.End),
			zap.Int("leads", len(a.Leads)),
			zap.Int("orders", len(a.Orders)),
		)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.start, "start", "", "start date YYYY-MM-DD")
	f.StringVar(&exportFlags.end, "end", "", "end date YYYY-MM-DD")
	f.Int64Var(&exportFlags.userID, "user", 0, "Sankhya user id owning the leads")
	f.BoolVar(&exportFlags.admin, "admin", false, "include leads of every user")
	f.StringVar(&exportFlags.out, "out", "analise.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
