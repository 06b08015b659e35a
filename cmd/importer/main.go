package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/input"
	"github.com/passbi/transport_catalogue/internal/routing"
)

func main() {
	// Command-line flags
	networkPath := flag.String("file", "", "Path to JSON network document (required)")
	checkGraph := flag.Bool("check-graph", true, "Build the routing graph before saving to reject broken networks")

	flag.Parse()

	if *networkPath == "" {
		fmt.Println("Usage: importer --file=<network.json> [--check-graph=true]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*networkPath); os.IsNotExist(err) {
		log.Fatalf("Network file not found: %s", *networkPath)
	}

	log.Println("Starting network import...")
	log.Printf("Network file: %s", *networkPath)

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	importLogID, err := db.StartImportLog(ctx, pool, *networkPath)
	if err != nil {
		log.Fatalf("Failed to create import log: %v", err)
	}

	message, err := runImport(ctx, pool, *networkPath, *checkGraph)
	if err != nil {
		if logErr := db.FinishImportLog(ctx, pool, importLogID, "failed", err.Error()); logErr != nil {
			log.Printf("Failed to update import log: %v", logErr)
		}
		log.Fatalf("Import failed: %v", err)
	}

	if err := db.FinishImportLog(ctx, pool, importLogID, "success", message); err != nil {
		log.Printf("Failed to update import log: %v", err)
	}

	log.Println("Import completed successfully!")
}

func runImport(ctx context.Context, pool *pgxpool.Pool, path string, checkGraph bool) (string, error) {
	startTime := time.Now()

	log.Println("Step 1/3: Parsing network document...")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open network file: %w", err)
	}
	defer f.Close()

	doc, err := input.Parse(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse network: %w", err)
	}

	log.Println("Step 2/3: Validating network...")
	c := catalogue.New()
	if err := input.FillCatalogue(doc, c); err != nil {
		return "", fmt.Errorf("invalid network: %w", err)
	}
	if checkGraph && doc.RoutingSettings != nil {
		if _, err := routing.NewTransitRouter(doc.RoutingSettings.ToModel(), c); err != nil {
			return "", fmt.Errorf("network cannot be routed: %w", err)
		}
	}

	log.Println("Step 3/3: Saving network to database...")
	counts, err := db.SaveNetwork(ctx, pool, doc)
	if err != nil {
		return "", fmt.Errorf("failed to save network: %w", err)
	}

	log.Printf("Import took %v", time.Since(startTime))
	return fmt.Sprintf("Imported %d stops, %d distances, %d buses", counts.Stops, counts.Distances, counts.Buses), nil
}
