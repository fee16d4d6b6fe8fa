package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fire all overdue pending checks once",
		Long: `Runs one pass of the due-check sweeper: every PENDING payment whose
next_check_at has passed gets its pending notification, exactly once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			sent, err := app.Payments.RunDueChecks(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pending notifications sent: %d\n", sent)
			return nil
		},
	}
}
