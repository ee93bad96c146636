// Package storage is the durable row store for validated events: five fixed
// tables with flattened columns, a batched write-through Writer, and the
// read-back queries consumed by the dashboard collaborator.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/udite/city-telemetry/internal/event"
)

// Sink is the row store consumed by the Writer. Insert stages one row in the
// open batch; Commit makes the batch durable. A batch whose commit fails is
// discarded, not retried. Implementations are not safe for concurrent use:
// the Writer serializes all access behind its own lock.
type Sink interface {
	Insert(evt event.Event) error
	Commit() error
}

// DB wraps the database connection and the currently open insert batch.
type DB struct {
	*sql.DB
	tx *sql.Tx
}

// Connect establishes a connection to the database.
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{DB: db}, nil
}

// RunMigrations executes all SQL migration files in order.
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	return nil
}

const (
	insertTrafficState = `
		INSERT INTO traffic_state (
			timestamp, location_id, location_district, congestion_level, average_speed
		) VALUES ($1, $2, $3, $4, $5)
	`
	insertInfrastructureStatus = `
		INSERT INTO infrastructure_status (
			timestamp, infrastructure_id, infrastructure_type, status,
			capacity_percentage, vibration_level
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	insertServiceAccessibility = `
		INSERT INTO service_accessibility (
			timestamp, service_id, service_type, accessibility_status,
			estimated_access_time, capacity_percentage
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	insertEnvironmentalConditions = `
		INSERT INTO environmental_conditions (
			timestamp, location_id, location_district, rainfall_mm,
			wind_speed_kmh, temperature_celsius, humidity_percentage
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	insertSystemHealth = `
		INSERT INTO system_health (
			timestamp, component_id, component_type, health_status,
			latency_ms, error_rate_percentage
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
)

// Insert stages one validated event into the open batch, routing it to its
// category's table. The batch is opened lazily on the first insert after a
// commit.
func (db *DB) Insert(evt event.Event) error {
	tx, err := db.batch()
	if err != nil {
		return err
	}

	// A failed row must not poison the open transaction, so each insert runs
	// inside its own savepoint.
	if _, err := tx.Exec("SAVEPOINT event_row"); err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}

	switch e := evt.(type) {
	case *event.TrafficState:
		_, err = tx.Exec(insertTrafficState,
			e.Time, e.Location.ID, e.Location.District,
			e.Metrics.CongestionLevel, e.Metrics.AverageSpeed)
	case *event.InfrastructureStatus:
		_, err = tx.Exec(insertInfrastructureStatus,
			e.Time, e.Infrastructure.ID, e.Infrastructure.Type, e.Status,
			e.Metrics.CapacityPercentage, e.Metrics.VibrationLevel)
	case *event.ServiceAccessibility:
		_, err = tx.Exec(insertServiceAccessibility,
			e.Time, e.Service.ID, e.Service.Type, e.Accessibility.Status,
			e.Accessibility.EstimatedAccessTime, e.Accessibility.CapacityPercentage)
	case *event.EnvironmentalConditions:
		_, err = tx.Exec(insertEnvironmentalConditions,
			e.Time, e.Location.ID, e.Location.District,
			e.Metrics.RainfallMM, e.Metrics.WindSpeedKMH,
			e.Metrics.TemperatureCelsius, e.Metrics.HumidityPercentage)
	case *event.SystemHealth:
		_, err = tx.Exec(insertSystemHealth,
			e.Time, e.Component.ID, e.Component.Type, e.Health.Status,
			e.Health.LatencyMS, e.Health.ErrorRatePercentage)
	default:
		err = fmt.Errorf("no table for event category %q", evt.Category())
	}

	if err != nil {
		if _, rbErr := tx.Exec("ROLLBACK TO SAVEPOINT event_row"); rbErr != nil {
			return fmt.Errorf("failed to insert %s (savepoint rollback also failed: %v): %w",
				evt.Category(), rbErr, err)
		}
		return fmt.Errorf("failed to insert %s: %w", evt.Category(), err)
	}

	if _, err := tx.Exec("RELEASE SAVEPOINT event_row"); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// Commit makes the open batch durable. A nil batch commits trivially.
func (db *DB) Commit() error {
	if db.tx == nil {
		return nil
	}
	err := db.tx.Commit()
	db.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Close rolls back any uncommitted batch and closes the connection pool.
// Callers must flush through the Writer before closing.
func (db *DB) Close() error {
	if db.tx != nil {
		_ = db.tx.Rollback()
		db.tx = nil
	}
	return db.DB.Close()
}

func (db *DB) batch() (*sql.Tx, error) {
	if db.tx != nil {
		return db.tx, nil
	}
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	db.tx = tx
	return tx, nil
}
