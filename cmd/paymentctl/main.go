package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/EventDesk/internal/pkg/bootstrap"
	"github.com/ManuelReschke/EventDesk/internal/pkg/cache"
	"github.com/ManuelReschke/EventDesk/internal/pkg/env"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "paymentctl",
		Short:   "Operate the EventDesk payment workflow",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.SetupEnvFile()
		},
	}

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(resendCmd())
	rootCmd.AddCommand(receiptCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadApp connects database and cache and wires the services without
// starting queue workers.
func loadApp(ctx context.Context) (*bootstrap.App, error) {
	cache.SetupCache()
	return bootstrap.Setup(ctx)
}
