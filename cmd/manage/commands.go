package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-realestate-listings/config"
	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/internal/container"
	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	pginfra "github.com/oksasatya/go-realestate-listings/internal/infrastructure/postgres"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back SQL migrations",
	}
	run := func(up bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := helpers.NewLogger(cfg.AppName+"-manage", cfg.Env, cfg.LogLevel)
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			return pginfra.Migrate(cfg.PostgresDSN(), dir, up, logger)
		}
	}
	up := &cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run(true)}
	down := &cobra.Command{Use: "down", Short: "Roll back the last migration", RunE: run(false)}
	cmd.PersistentFlags().String("dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(up, down)
	return cmd
}

func setRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username> <AGENT|BUYER>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cleanup, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := app.NewAccountService(container.AppDeps())
			if err := svc.SetRole(ctx, args[0], entity.Role(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

func deletePropertyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-property <id>",
		Short: "Delete any property with its images and inquiries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cleanup, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.NewPropertyService(container.AppDeps()).AdminDelete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted property %s\n", args[0])
			return nil
		},
	}
}

func backfillProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-profiles",
		Short: "Create buyer profiles for users that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cleanup, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := app.NewAccountService(container.AppDeps()).BackfillProfiles(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d profile(s)\n", n)
			return nil
		},
	}
}

type seedListing struct {
	title, city, state string
	price              string
	beds               int
	baths              string
	area               int
	kind               entity.PropertyType
}

var seedListings = []seedListing{
	{"Sunny family house", "Austin", "TX", "185000", 3, "2", 1850, entity.PropertyHouse},
	{"Downtown loft", "Austin", "TX", "129900.50", 1, "1", 720, entity.PropertyApartment},
	{"Lakeview condo", "Chicago", "IL", "240000", 2, "2.5", 1100, entity.PropertyCondo},
	{"Corner lot", "Denver", "CO", "99000", 0, "0", 5000, entity.PropertyLand},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo agent, a demo buyer and sample listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cleanup, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			password, _ := cmd.Flags().GetString("password")
			deps := container.AppDeps()
			accounts := app.NewAccountService(deps)
			properties := app.NewPropertyService(deps)

			agentID := ""
			for _, u := range []struct{ name, role string }{{"demo_agent", "AGENT"}, {"demo_buyer", "BUYER"}} {
				acc, _, err := accounts.Register(ctx, app.RegisterInput{
					Username:        u.name,
					Email:           u.name + "@example.com",
					Password:        password,
					ConfirmPassword: password,
					Role:            u.role,
				})
				var verr *app.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(cmd.OutOrStdout(), "skip %s: %v\n", u.name, verr)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s id=%s password=%s\n", u.name, acc.ID(), password)
				if acc.Profile.IsAgent() {
					agentID = acc.ID()
				}
			}
			if agentID == "" {
				return nil
			}

			for _, l := range seedListings {
				price, baths := decimal.RequireFromString(l.price), decimal.RequireFromString(l.baths)
				p, err := properties.Create(ctx, agentID, app.PropertyInput{
					Title:        l.title,
					Description:  l.title + " in " + l.city,
					Price:        &price,
					Address:      "1 Demo Street",
					City:         l.city,
					State:        l.state,
					Zipcode:      "00000",
					Bedrooms:     l.beds,
					Bathrooms:    &baths,
					Area:         l.area,
					PropertyType: string(l.kind),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded property %q %s\n", p.Title, p.FormattedPrice())
			}
			return nil
		},
	}
	cmd.Flags().String("password", "demo-pass-2024", "password for the demo users")
	return cmd
}
