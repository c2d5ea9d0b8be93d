package main

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

// newRootCmd creates the root command.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nrdb-companion",
		Short: "Netrunner collection tracker and proxy generator",
		Long: `nrdb-companion tracks which Netrunner packs and cards you own, compares
NetrunnerDB decklists against that collection and generates printable
proxy sheets for the cards you are missing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			output.SetupLoggingTo(cmd.ErrOrStderr(), a.verbose || a.cfg.App.DebugMode)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFlag, "config", "", "Path to config file (env: NRDB_COMPANION_CONFIG)")
	flags.StringVarP(&a.collectionFlag, "collection", "c", "", "Path to collection file (default from config: collection.toml)")
	flags.StringVar(&a.cacheDirFlag, "cache-dir", "", "Cache directory (default from config: ~/.nrdb-companion/cache)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newInitCmd(a),
		newPacksCmd(a),
		newPackCmd(a),
		newCardCmd(a),
		newStatsCmd(a),
		newCompareCmd(a),
		newProxyCmd(a),
		newProxyPackCmd(a),
		newBatchCmd(a),
		newCacheCmd(a),
		newBackupCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}
