package main

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete abandoned pending orders once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			st, err := buildStack(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.orders.SweepAbandoned(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d abandoned orders\n", n)
			return nil
		},
	}
}
