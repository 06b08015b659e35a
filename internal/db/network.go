package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/input"
	"github.com/passbi/transport_catalogue/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS stops (
	name      TEXT PRIMARY KEY,
	latitude  DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS stop_distances (
	from_stop TEXT NOT NULL REFERENCES stops(name) ON DELETE CASCADE,
	to_stop   TEXT NOT NULL REFERENCES stops(name) ON DELETE CASCADE,
	meters    INTEGER NOT NULL CHECK (meters > 0),
	PRIMARY KEY (from_stop, to_stop)
);

CREATE TABLE IF NOT EXISTS buses (
	name         TEXT PRIMARY KEY,
	is_roundtrip BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS bus_stops (
	bus_name  TEXT NOT NULL REFERENCES buses(name) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	stop_name TEXT NOT NULL REFERENCES stops(name),
	PRIMARY KEY (bus_name, position)
);

CREATE TABLE IF NOT EXISTS import_log (
	id           BIGSERIAL PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL,
	message      TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
`

// NetworkCounts summarizes a stored network
type NetworkCounts struct {
	Stops     int
	Distances int
	Buses     int
}

// EnsureSchema creates the network tables if they do not exist
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveNetwork replaces the stored network with the base requests of doc
// in a single transaction
func SaveNetwork(ctx context.Context, p *pgxpool.Pool, doc *input.Document) (NetworkCounts, error) {
	var counts NetworkCounts

	tx, err := p.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE bus_stops, buses, stop_distances, stops"); err != nil {
		return counts, fmt.Errorf("failed to clear network: %w", err)
	}

	stops := &pgx.Batch{}
	distances := &pgx.Batch{}
	buses := &pgx.Batch{}

	for _, req := range doc.BaseRequests {
		switch req.Type {
		case input.TypeStop:
			stops.Queue(`
				INSERT INTO stops (name, latitude, longitude)
				VALUES ($1, $2, $3)
			`, req.Name, req.Latitude, req.Longitude)
			for other, meters := range req.RoadDistances {
				distances.Queue(`
					INSERT INTO stop_distances (from_stop, to_stop, meters)
					VALUES ($1, $2, $3)
				`, req.Name, other, meters)
			}
		case input.TypeBus:
			buses.Queue(`
				INSERT INTO buses (name, is_roundtrip)
				VALUES ($1, $2)
			`, req.Name, req.IsRoundtrip)
			for i, stop := range req.Stops {
				buses.Queue(`
					INSERT INTO bus_stops (bus_name, position, stop_name)
					VALUES ($1, $2, $3)
				`, req.Name, i, stop)
			}
			counts.Buses++
		}
	}
	counts.Stops = stops.Len()
	counts.Distances = distances.Len()

	// Stops first: distances and bus stops reference them
	for _, step := range []struct {
		name  string
		batch *pgx.Batch
	}{
		{"stops", stops},
		{"distances", distances},
		{"buses", buses},
	} {
		if err := execBatch(ctx, tx, step.batch); err != nil {
			return counts, fmt.Errorf("failed to insert %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return counts, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Saved %d stops, %d distances and %d buses", counts.Stops, counts.Distances, counts.Buses)
	return counts, nil
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// LoadNetwork reads the stored network into a new catalogue
func LoadNetwork(ctx context.Context, p *pgxpool.Pool) (*catalogue.Catalogue, error) {
	c := catalogue.New()

	if err := loadStops(ctx, p, c); err != nil {
		return nil, err
	}
	if err := loadDistances(ctx, p, c); err != nil {
		return nil, err
	}
	buses, err := loadBuses(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, bus := range buses {
		if err := c.AddBus(bus.Name, bus.Stops, bus.IsRoundtrip); err != nil {
			return nil, fmt.Errorf("failed to add bus: %w", err)
		}
	}

	log.Printf("Loaded network from database: %d stops, %d buses", len(c.AllStopsSortedByName()), len(buses))
	return c, nil
}

func loadStops(ctx context.Context, p *pgxpool.Pool, c *catalogue.Catalogue) error {
	rows, err := p.Query(ctx, "SELECT name, latitude, longitude FROM stops ORDER BY name")
	if err != nil {
		return fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var coords models.Coordinates
		if err := rows.Scan(&name, &coords.Lat, &coords.Lon); err != nil {
			return fmt.Errorf("failed to scan stop: %w", err)
		}
		if err := c.AddStop(name, coords); err != nil {
			return fmt.Errorf("failed to add stop: %w", err)
		}
	}
	return rows.Err()
}

func loadDistances(ctx context.Context, p *pgxpool.Pool, c *catalogue.Catalogue) error {
	rows, err := p.Query(ctx, "SELECT from_stop, to_stop, meters FROM stop_distances")
	if err != nil {
		return fmt.Errorf("failed to query distances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to string
		var meters int
		if err := rows.Scan(&from, &to, &meters); err != nil {
			return fmt.Errorf("failed to scan distance: %w", err)
		}
		if err := c.SetDistance(from, to, meters); err != nil {
			return fmt.Errorf("failed to set distance: %w", err)
		}
	}
	return rows.Err()
}

func loadBuses(ctx context.Context, p *pgxpool.Pool) ([]models.Bus, error) {
	rows, err := p.Query(ctx, `
		SELECT b.name, b.is_roundtrip, bs.stop_name
		FROM buses b
		LEFT JOIN bus_stops bs ON bs.bus_name = b.name
		ORDER BY b.name, bs.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query buses: %w", err)
	}
	defer rows.Close()

	var buses []models.Bus
	for rows.Next() {
		var name string
		var roundtrip bool
		var stop *string
		if err := rows.Scan(&name, &roundtrip, &stop); err != nil {
			return nil, fmt.Errorf("failed to scan bus stop: %w", err)
		}

		if len(buses) == 0 || buses[len(buses)-1].Name != name {
			buses = append(buses, models.Bus{Name: name, Stops: []string{}, IsRoundtrip: roundtrip})
		}
		if stop != nil {
			last := &buses[len(buses)-1]
			last.Stops = append(last.Stops, *stop)
		}
	}
	return buses, rows.Err()
}

// StartImportLog records the start of an import and returns its id
func StartImportLog(ctx context.Context, p *pgxpool.Pool, source string) (int64, error) {
	var id int64
	err := p.QueryRow(ctx, `
		INSERT INTO import_log (source, status)
		VALUES ($1, 'running')
		RETURNING id
	`, source).Scan(&id)
	return id, err
}

// FinishImportLog records the outcome of an import
func FinishImportLog(ctx context.Context, p *pgxpool.Pool, id int64, status, message string) error {
	_, err := p.Exec(ctx, `
		UPDATE import_log
		SET completed_at = NOW(),
		    status = $2,
		    message = $3
		WHERE id = $1
	`, id, status, message)
	return err
}
