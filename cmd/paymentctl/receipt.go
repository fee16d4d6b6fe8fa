package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/EventDesk/internal/pkg/receipt"
)

func receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt [transaction_id]",
		Short: "Export a receipt as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = receipt.Filename(args[0])
			}

			pdf, err := app.Receipts.ExportPDF(ctx, args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default receipt-<transaction_id>.pdf)")

	return cmd
}
