package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/passbi/transport_catalogue/internal/config"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/routing"
)

// Loads the stored network, builds the routing graph exactly as the API
// server would and reports its statistics
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	flag.Parse()

	log.Println("🔄 Transport Catalogue - Graph Rebuild Tool")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Println("📡 Connecting to database...")
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	ctx := context.Background()

	c, err := db.LoadNetwork(ctx, pool)
	if err != nil {
		log.Fatalf("❌ Failed to load network: %v", err)
	}

	stops := c.AllStopsSortedByName()
	buses := c.AllBusLines()
	log.Printf("📊 Database statistics:")
	log.Printf("   Stops: %d", len(stops))
	log.Printf("   Buses: %d", len(buses))

	if len(stops) == 0 {
		log.Fatalf("❌ No data found in database. Import a network first!")
	}

	fmt.Println()
	log.Println("🔄 Building routing graph...")
	settings := cfg.RoutingSettings()
	router, err := routing.NewTransitRouter(settings, c)
	if err != nil {
		log.Fatalf("❌ Failed to build graph: %v", err)
	}

	stats := router.Stats()
	served := 0
	for _, stop := range stops {
		if names, err := c.BusesByStop(stop.Name); err == nil && len(names) > 0 {
			served++
		}
	}

	fmt.Println()
	log.Println("✅ Graph build completed!")
	log.Printf("⏱️  Duration: %v", stats.BuildDuration)
	log.Printf("📊 Graph statistics:")
	log.Printf("   Vertices: %d", stats.Vertices)
	log.Printf("   Edges: %d", stats.Edges)
	log.Printf("   Wait time: %d min, velocity: %.1f m/min", settings.BusWaitTime, settings.BusVelocity)
	log.Printf("   Stop coverage: %d/%d (%.1f%%)", served, len(stops), float64(served)/float64(len(stops))*100)
	log.Printf("   Fingerprint: %s", router.Fingerprint())

	fmt.Println()
	log.Println("🚀 Graph is ready for routing!")
}
