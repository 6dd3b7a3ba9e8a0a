package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/internal/prompt"
)

var analysisFlags struct {
	start    string
	end      string
	userID   int64
	admin    bool
	format   string
	userName string
	question string
}

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Fetch a CRM snapshot and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analysis"); err != nil {
			return err
		}
		rng, err := flagRange(analysisFlags.start, analysisFlags.end, cfg.Analysis.DefaultDays)
		if err != nil {
			return err
		}

		agg, rc, err := newAggregator(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rc.Close() //nolint:errcheck

		a, err := agg.FetchAnalysis(cmd.Context(), rng, analysisFlags.userID, analysisFlags.admin)
		if err != nil {
			return err
		}
		return renderAnalysis(cmd.OutOrStdout(), a, analysisFlags.format, analysisFlags.userName, analysisFlags.question)
	},
}

// flagRange builds a date range from --start/--end, defaulting to the last
// days days when both are empty.
func flagRange(start, end string, days int) (model.DateRange, error) {
	if start == "" && end == "" {
		return model.DefaultDateRange(time.Now(), days), nil
	}
	return model.NewDateRange(start, end)
}

func renderAnalysis(w io.Writer, a *model.Analysis, format, userName, question string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(a), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(a), "encode yaml")
	case "prompt":
		_, err := fmt.Fprintln(w, prompt.Build(a, userName, question))
		return err
	default:
		return eris.Errorf("unknown format %q (want json, yaml or prompt)", format)
	}
}

func init() {
	f := analysisCmd.Flags()
	f.StringVar(&analysisFlags.start, "start", "", "start date YYYY-MM-DD")
	f.StringVar(&analysisFlags.end, "end", "", "end date YYYY-MM-DD")
	f.Int64Var(&analysisFlags.userID, "user", 0, "Sankhya user id owning the leads")
	f.BoolVar(&analysisFlags.admin, "admin", false, "include leads of every user")
	f.StringVar(&analysisFlags.format, "format", "json", "output format: json, yaml or prompt")
	f.StringVar(&analysisFlags.userName, "name", "Usuário", "user name shown in prompt output")
	f.StringVar(&analysisFlags.question, "question", "", "question appended to prompt output")
	rootCmd.AddCommand(analysisCmd)
}
