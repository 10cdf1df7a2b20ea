package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/routes"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/config"
	"github.com/arthomesoni/arthome/database/migrations"
	"github.com/arthomesoni/arthome/database/seeders"
	"github.com/arthomesoni/arthome/internal/server"
	"github.com/arthomesoni/arthome/pkg/database"
	"github.com/arthomesoni/arthome/pkg/router"
	"github.com/arthomesoni/arthome/pkg/ws"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Start()
		},
	}
}

// withDB loads config, connects to Mongo, runs fn, and disconnects.
func withDB(fn func(ctx context.Context) error) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	return fn(ctx)
}

func dbIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db:index",
		Short: "Create MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(migrations.Run)
		},
	}
}

func dbSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db:seed",
		Short: "Seed the admin user, the ART10 promo code, and sample catalog data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context) error {
				if err := migrations.Run(ctx); err != nil {
					return err
				}
				return seeders.Run(ctx)
			})
		},
	}
}

func promoPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promo:prune",
		Short: "Deactivate expired promo codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context) error {
				svc := services.NewPromoService(repositories.NewPromoRepository())
				n, err := svc.PruneExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("deactivated %d promo code(s)\n", n)
				return nil
			})
		},
	}
}

func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "Print the HTTP route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}

			r := router.New()
			routes.RegisterAPI(r, ws.NewHub())

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			for _, rt := range r.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", rt.Method, rt.Path, rt.Name)
			}
			return w.Flush()
		},
	}
}
