package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load companies and proposals from a YAML fixture file",
	Long:  "Replaces every company listed in the fixture, and everything it owns, with the fixture contents. Intended for development and demos.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		return runSeed(cmd.Context(), os.Stdout, file)
	},
}

func runSeed(ctx context.Context, w io.Writer, path string) error {
	fixture, err := model.LoadFixture(path)
	if err != nil {
		return err
	}

	st, err := initStore(ctx, "store")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "seed: migrate")
	}

	stats, err := st.Seed(ctx, fixture)
	if err != nil {
		return eris.Wrap(err, "seed")
	}

	zap.L().Info("fixture loaded",
		zap.String("file", path),
		zap.Int("companies", stats.Companies),
		zap.Int("proposals", stats.Proposals),
	)
	fmt.Fprintf(w, "Seeded %d companies: %d team members, %d projects, %d awards, %d proposals\n",
		stats.Companies, stats.TeamMembers, stats.Projects, stats.Awards, stats.Proposals)
	return nil
}

func init() {
	seedCmd.Flags().String("file", "fixtures.yaml", "path to the fixture file")
	rootCmd.AddCommand(seedCmd)
}
