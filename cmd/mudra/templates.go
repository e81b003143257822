package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
)

func newTemplatesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the classifier templates in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			// Seeds the built-ins on first use, like a run would.
			templates, err := app.LoadTemplates(st)
			if err != nil {
				return err
			}

			records, err := st.Templates().List(false)
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCLASS\tBUILTIN\tCREATED")
			fmt.Fprintln(w, "--\t----\t-----\t-------\t-------")
			for _, t := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", t.ID, t.Name, t.Label, t.Builtin, t.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			w.Flush()

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d templates loadable by the template classifier\n", len(templates))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Templates().Delete(args[0]); err != nil {
				return fmt.Errorf("delete template %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}
