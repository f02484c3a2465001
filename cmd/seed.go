package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/levelup-backend/internal/app"
	"github.com/yungbote/levelup-backend/internal/data/seed"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog of levels, lessons and exam questions",
		Long:  "Seed writes the built-in demo catalog, or the YAML catalog given with --file. Rows that already exist are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				color.New(color.FgHiRed).Printf("❌ %v\n", err)
				return err
			}
			a, err := app.New(app.Options{AutoMigrate: true})
			if err != nil {
				color.New(color.FgHiRed).Printf("❌ %v\n", err)
				return err
			}
			defer a.Close()

			sum, err := seed.New(a.Services.Learning, a.Log).Apply(cmd.Context(), cat)
			if err != nil {
				color.New(color.FgHiRed).Printf("❌ seed failed: %v\n", err)
				return err
			}
			printSeedSummary(sum)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a catalog YAML file (defaults to the built-in catalog)")
	return cmd
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.Parse(data)
}

func printSeedSummary(s *seed.Summary) {
	rows := []struct {
		name             string
		created, existed int
	}{
		{"levels", s.LevelsCreated, s.LevelsExisting},
		{"sections", s.SectionsCreated, s.SectionsExisting},
		{"lessons", s.LessonsCreated, s.LessonsExisting},
		{"questions", s.QuestionsCreated, s.QuestionsExisting},
	}
	for _, r := range rows {
		line := fmt.Sprintf("%-10s created=%d existing=%d", r.name, r.created, r.existed)
		if r.created > 0 {
			color.New(color.FgGreen).Println("✅ " + line)
		} else {
			color.New(color.FgWhite).Println("  " + line)
		}
	}
	color.New(color.FgHiCyan).Println("✨ seed complete")
}
