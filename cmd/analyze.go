package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/proposal-cli/internal/analytics"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one proposal and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		company, _ := cmd.Flags().GetString("company")
		proposal, _ := cmd.Flags().GetString("proposal")
		format, _ := cmd.Flags().GetString("format")
		return runAnalyze(cmd.Context(), os.Stdout, company, proposal, format)
	},
}

func runAnalyze(ctx context.Context, w io.Writer, companyID, proposalID, format string) error {
	if !validFormat(format) {
		return eris.Errorf("analyze: unknown format %q (want table, json or yaml)", format)
	}

	st, err := initStore(ctx, "analyze")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	engine, err := newEngine(st)
	if err != nil {
		return err
	}

	report, err := engine.Report(ctx, companyID, proposalID)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			return eris.Errorf("analyze: proposal %s not found for company %s", proposalID, companyID)
		}
		return eris.Wrap(err, "analyze")
	}

	return formatReport(w, report, format)
}

func validFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

func formatReport(w io.Writer, r *analytics.ScoreReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "analyze: encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "analyze: encode yaml")
		}
		return eris.Wrap(enc.Close(), "analyze: encode yaml")
	case "table":
		formatReportTable(w, r)
		return nil
	default:
		return eris.Errorf("analyze: unknown format %q", format)
	}
}

func formatReportTable(w io.Writer, r *analytics.ScoreReport) {
	fmt.Fprintf(w, "Success rate: %d%%\n", r.SuccessRate)
	fmt.Fprintf(w, "Confidence:   %s\n", r.ConfidenceLevel)
	if r.Degraded() {
		fmt.Fprintf(w, "Error:        %s\n", r.Error)
	}
	fmt.Fprintf(w, "Generated:    %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	dp := r.DataPoints
	fmt.Fprintf(w, "Proposals:    %d total, %d resolved, %d won, %d recent\n",
		dp.TotalProposals, dp.SubmittedProposals, dp.WonProposals, dp.RecentProposals)

	if len(r.Factors) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FACTOR\tVALUE\tIMPACT")
		for _, f := range r.Factors {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Factor, f.Value, f.Impact)
		}
		tw.Flush() //nolint:errcheck
	}

	if len(r.BestPractices) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PRIORITY\tCATEGORY\tSUGGESTION")
		for _, b := range r.BestPractices {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Priority, b.Category, b.Suggestion)
		}
		tw.Flush() //nolint:errcheck
	}
}

func init() {
	analyzeCmd.Flags().String("company", "", "owning company id")
	analyzeCmd.Flags().String("proposal", "", "proposal id")
	analyzeCmd.Flags().String("format", "table", "output format: table, json or yaml")
	_ = analyzeCmd.MarkFlagRequired("company")
	_ = analyzeCmd.MarkFlagRequired("proposal")
	rootCmd.AddCommand(analyzeCmd)
}
