package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/EventDesk/app/models"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [order_id]",
		Short: "Show a payment and its callback history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Repos.Payment.GetByOrderID(args[0])
			if err != nil {
				return fmt.Errorf("order %s: %w", args[0], err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Order %s\n", rec.OrderID)
			fmt.Fprintln(w, strings.Repeat("=", 40))
			fmt.Fprintf(w, "  Status:       %s\n", rec.Status)
			fmt.Fprintf(w, "  Notification: %s\n", valueOrDash(rec.NotificationStatusValue()))
			fmt.Fprintf(w, "  Transaction:  %s\n", valueOrDash(rec.TransactionIDValue()))
			fmt.Fprintf(w, "  Amount:       %s %s\n", rec.Currency, models.FormatMinorAmount(rec.AmountMinor))
			if rec.NextCheckAt != nil {
				fmt.Fprintf(w, "  Next check:   %s\n", rec.NextCheckAt.Format("2006-01-02 15:04:05 MST"))
			}

			callbacks, err := app.Repos.PaymentCallback.ListByOrderID(rec.OrderID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\nCallbacks (%d):\n", len(callbacks))
			for _, cb := range callbacks {
				fmt.Fprintf(w, "  %s  %-8s %-8s sig=%t %s\n",
					cb.CreatedAt.Format("2006-01-02 15:04:05"), cb.AssertedStatus, cb.Outcome, cb.SignatureValid, cb.ProcessingError)
			}
			return nil
		},
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
