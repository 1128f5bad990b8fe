package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/domain"
	"course-marketplace/pkg/logger"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the course catalogue from a JSON file",
	Long: `Delete every course and insert the courses listed in a JSON array.
Each entry has the shape of a course creation request. Registrations are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "courses.json", "JSON file with the courses to load")
}

func runSeed() {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		logger.Error("Failed to read %s: %v", seedFile, err)
		os.Exit(1)
	}

	var reqs []*domain.CreateCourseRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		logger.Error("Failed to parse %s: %v", seedFile, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	app, err := newApplication(ctx, config.Get())
	if err != nil {
		logger.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	courses, err := app.courses.ResetCourses(ctx, reqs)
	if err != nil {
		logger.Error("Seeding failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d courses from %s\n", len(courses), seedFile)
}
