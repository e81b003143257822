package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
)

func newSessionsCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.Sessions().List(limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tCLASSIFIER\tDRY RUN\tFRAMES\tINTENTS\tFAILURES")
			for _, s := range sessions {
				duration := "running"
				if s.EndedAt != nil {
					duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%d\t%d\t%d\n",
					s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), duration,
					s.Classifier, s.DryRun, s.Frames, s.Intents, s.Failures)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.Sessions().GetByID(args[0]); err != nil {
				return fmt.Errorf("session %s: %w", args[0], err)
			}
			evs, err := st.Events().ListBySession(args[0])
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tTYPE\tKIND\tDETAIL")
			for _, e := range evs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format("15:04:05.000"), e.Type, e.Kind, e.Detail)
			}
			return w.Flush()
		},
	})

	return cmd
}
