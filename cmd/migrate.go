package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/levelup-backend/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(app.Options{AutoMigrate: true, NoCache: true})
			if err != nil {
				color.New(color.FgHiRed).Printf("❌ migrate failed: %v\n", err)
				return err
			}
			defer a.Close()
			color.New(color.FgGreen).Println("✅ schema is up to date")
			return nil
		},
	}
}
