package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resend [order_id]",
		Short: "Re-dispatch the notification for the current payment status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			inline, _ := cmd.Flags().GetBool("inline")
			if inline {
				rec, err := app.Repos.Payment.GetByOrderID(args[0])
				if err != nil {
					return fmt.Errorf("order %s: %w", args[0], err)
				}
				if err := app.Payments.SendNotification(ctx, rec.OrderID, rec.Status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sent %s notification for %s\n", rec.Status, rec.OrderID)
				return nil
			}

			status, err := app.Payments.ResendNotification(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dispatched %s notification for %s\n", status, args[0])
			return nil
		},
	}

	cmd.Flags().Bool("inline", false, "Send the mail directly instead of through the job queue")

	return cmd
}
