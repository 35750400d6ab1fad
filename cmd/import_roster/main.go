// Command import_roster replaces the stored roster from a CSV or text file.
// Every tier is reset, exactly as an import from the display would do.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/sampler"
	"github.com/ArowuTest/prizedraw-backend/internal/services"
	"github.com/ArowuTest/prizedraw-backend/internal/storage"
	"github.com/ArowuTest/prizedraw-backend/internal/utils"
	"golang.org/x/exp/slog"
)

func main() {
	// Load .env file
	if loaded, err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("Failed to read .env: %v", err)
	} else if !loaded {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get roster file path from command line arguments
	if len(os.Args) < 2 {
		log.Fatal("Roster file path is required as a command line argument")
	}
	rosterPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel, os.Stderr))

	ctx := context.Background()
	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer stores.Close(ctx)

	drawService := services.NewDrawService(cfg.Draw.Tiers, sampler.NewTimeSource(),
		stores.State, stores.Records, nil, nil, cfg.Storage.WriteTimeout)

	summary, err := importRoster(ctx, drawService, rosterPath)
	if err != nil {
		log.Fatalf("Failed to import roster: %v", err)
	}

	log.Printf("Roster imported: %d names (%d entries read, %d duplicates dropped)",
		summary.Imported, summary.Submitted, summary.Duplicates)
}

// importRoster reads the file and replaces the roster through the engine
func importRoster(ctx context.Context, drawService services.DrawService, path string) (*models.RosterSummary, error) {
	raw, err := readRoster(path)
	if err != nil {
		return nil, err
	}
	return drawService.ResetAll(ctx, raw)
}

// readRoster parses .csv files as CSV and anything else as one name per line
func readRoster(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return utils.ParseRosterCSV(file)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return utils.ParseRosterText(string(data)), nil
}
