package main

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain"
	mysqlrepo "storefront/internal/repository/mysql"

	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	var p domain.Product
	var inactive bool

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalogue",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Name == "" || p.Price <= 0 {
				return errors.New("--name and a positive --price are required")
			}
			if p.FilePath == "" && p.ExternalLink == "" {
				return errors.New("one of --file or --link is required")
			}
			p.IsActive = !inactive

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, _, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err := mysqlrepo.NewProductRepository(db).Save(context.Background(), &p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "product %d created\n", p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&p.Name, "name", "", "product name")
	add.Flags().StringVar(&p.Description, "description", "", "product description")
	add.Flags().Int64Var(&p.Price, "price", 0, "price in rupiah")
	add.Flags().Int64Var(&p.Stock, "stock", 0, "units available")
	add.Flags().StringVar(&p.FilePath, "file", "", "file path relative to FILES_DIR")
	add.Flags().StringVar(&p.ExternalLink, "link", "", "external download link, served instead of the file")
	add.Flags().BoolVar(&inactive, "inactive", false, "create the product hidden from checkout")

	cmd.AddCommand(add)
	return cmd
}
