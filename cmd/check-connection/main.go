package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/passbi/transport_catalogue/internal/cache"
	"github.com/passbi/transport_catalogue/internal/db"
)

// Checks that the database and Redis configured through the environment are reachable
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	config := db.LoadConfigFromEnv()
	fmt.Println("🔗 Testing database connection...")
	fmt.Printf("   Host: %s:%d\n", config.Host, config.Port)
	fmt.Printf("   User: %s\n", config.User)
	fmt.Printf("   Database: %s\n\n", config.Database)

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connection successful!")
	fmt.Println()

	var pgVersion string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&pgVersion); err != nil {
		log.Printf("⚠️  Could not get PostgreSQL version: %v", err)
	} else {
		fmt.Printf("📊 PostgreSQL Version:\n   %s\n\n", pgVersion)
	}

	if err := db.HealthCheck(ctx, pool); err != nil {
		fmt.Println("⚠️  Network tables missing")
		fmt.Println("   → Run the importer to create them")
	} else {
		c, err := db.LoadNetwork(ctx, pool)
		if err != nil {
			log.Printf("⚠️  Stored network is not loadable: %v", err)
		} else {
			fmt.Printf("📋 Stored network: %d stops, %d buses\n\n",
				len(c.AllStopsSortedByName()), len(c.AllBusLines()))
		}
	}

	fmt.Println("🔗 Testing Redis connection...")
	client, err := cache.GetClient()
	if err != nil {
		log.Printf("⚠️  Redis not reachable: %v", err)
	} else {
		defer cache.Close()
		stats, err := cache.NewStore(client, cache.LoadConfigFromEnv()).Stats(ctx)
		if err != nil {
			log.Printf("⚠️  Could not read Redis stats: %v", err)
		} else {
			fmt.Printf("✅ Redis reachable (%v total connections)\n", stats["total_conns"])
		}
	}

	fmt.Println("\n✅ Connection test completed!")
}
