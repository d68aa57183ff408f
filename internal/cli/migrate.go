package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table and its indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, done, err := a.start(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := s.store.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (driver=%s)\n", s.store.Driver())
			return nil
		},
	}
}
