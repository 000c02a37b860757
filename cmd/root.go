package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/config"
)

var (
	cfg         *config.Config
	logLevelArg string
)

var rootCmd = &cobra.Command{
	Use:   "proposal-cli",
	Short: "Score bid proposals by their chance of winning",
	Long: `proposal-cli estimates the win probability of a bid proposal from the
owning company's resolved proposals, client history, recent results and
profile completeness, then explains the estimate and suggests improvements.

Reports are served over HTTP (serve) or printed once (analyze). The store
is Postgres or a local SQLite file, selected by store.driver.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "proposal-cli: load config")
		}
		applyLogLevel(c, logLevelArg)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "proposal-cli: init logger")
		}
		zap.L().Debug("proposal-cli: config loaded",
			zap.String("command", cmd.Name()),
			zap.String("store_driver", cfg.Store.Driver),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyLogLevel lets --log-level win over config.yaml and PROPOSAL_LOG_LEVEL.
func applyLogLevel(c *config.Config, level string) {
	if level != "" {
		c.Log.Level = level
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
