package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	mlog "github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

func newRootCmd(cfg *config.Config, envErr error) *cobra.Command {
	run := newRunCmd(cfg)

	root := &cobra.Command{
		Use:           "mudra",
		Short:         "Gesture-to-pointer control from a webcam",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("environment: %w", envErr)
			}
			mlog.Init(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
		// A bare "mudra" runs the engine.
		RunE: run.RunE,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	pf.StringVar(&cfg.Store.Path, "store", cfg.Store.Path, "sqlite database path (empty disables templates and recording)")

	// The run flags also apply to the bare command.
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run, newTemplatesCmd(cfg), newSessionsCmd(cfg), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mudra", Version)
		},
	}
}

// openStore opens the configured store for the inspection commands.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("no store configured (use --store or MUDRA_STORE)")
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
