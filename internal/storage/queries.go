package storage

import (
	"database/sql"
	"fmt"
)

// Read-back surface for the dashboard collaborator. Only committed rows are
// visible here; the open insert batch is not.

// LatestTrafficStates returns the most recent traffic rows, newest first.
func (db *DB) LatestTrafficStates(limit int) ([]*TrafficStateRow, error) {
	query := `
		SELECT id, timestamp, location_id, location_district, congestion_level, average_speed
		FROM traffic_state
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TrafficStateRow
	for rows.Next() {
		var r TrafficStateRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.LocationID, &r.LocationDistrict,
			&r.CongestionLevel, &r.AverageSpeed); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// LatestInfrastructureStatuses returns the most recent infrastructure rows,
// newest first.
func (db *DB) LatestInfrastructureStatuses(limit int) ([]*InfrastructureStatusRow, error) {
	query := `
		SELECT id, timestamp, infrastructure_id, infrastructure_type, status,
		       capacity_percentage, vibration_level
		FROM infrastructure_status
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*InfrastructureStatusRow
	for rows.Next() {
		var r InfrastructureStatusRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.InfrastructureID, &r.InfrastructureType,
			&r.Status, &r.CapacityPercentage, &r.VibrationLevel); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// LatestServiceAccessibilities returns the most recent service rows, newest
// first.
func (db *DB) LatestServiceAccessibilities(limit int) ([]*ServiceAccessibilityRow, error) {
	query := `
		SELECT id, timestamp, service_id, service_type, accessibility_status,
		       estimated_access_time, capacity_percentage
		FROM service_accessibility
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ServiceAccessibilityRow
	for rows.Next() {
		var r ServiceAccessibilityRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.ServiceID, &r.ServiceType,
			&r.AccessibilityStatus, &r.EstimatedAccessTime, &r.CapacityPercentage); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// LatestEnvironmentalConditions returns the most recent environment rows,
// newest first.
func (db *DB) LatestEnvironmentalConditions(limit int) ([]*EnvironmentalConditionsRow, error) {
	query := `
		SELECT id, timestamp, location_id, location_district, rainfall_mm,
		       wind_speed_kmh, temperature_celsius, humidity_percentage
		FROM environmental_conditions
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EnvironmentalConditionsRow
	for rows.Next() {
		var r EnvironmentalConditionsRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.LocationID, &r.LocationDistrict,
			&r.RainfallMM, &r.WindSpeedKMH, &r.TemperatureCelsius, &r.HumidityPercentage); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// LatestSystemHealths returns the most recent system-health rows, newest
// first.
func (db *DB) LatestSystemHealths(limit int) ([]*SystemHealthRow, error) {
	query := `
		SELECT id, timestamp, component_id, component_type, health_status,
		       latency_ms, error_rate_percentage
		FROM system_health
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SystemHealthRow
	for rows.Next() {
		var r SystemHealthRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.ComponentID, &r.ComponentType,
			&r.HealthStatus, &r.LatencyMS, &r.ErrorRatePercentage); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// ColumnStats summarizes one numeric column of one table.
type ColumnStats struct {
	Avg   sql.NullFloat64
	Min   sql.NullFloat64
	Max   sql.NullFloat64
	Count int64
}

// statsColumns whitelists the numeric columns reachable through Stats, since
// identifiers cannot be parameterized.
var statsColumns = map[string]map[string]bool{
	"traffic_state":            {"average_speed": true},
	"infrastructure_status":    {"capacity_percentage": true, "vibration_level": true},
	"service_accessibility":    {"estimated_access_time": true, "capacity_percentage": true},
	"environmental_conditions": {"rainfall_mm": true, "wind_speed_kmh": true, "temperature_celsius": true, "humidity_percentage": true},
	"system_health":            {"latency_ms": true, "error_rate_percentage": true},
}

// Stats returns avg/min/max/count of a numeric column.
func (db *DB) Stats(table, column string) (*ColumnStats, error) {
	cols, ok := statsColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table: %s", table)
	}
	if !cols[column] {
		return nil, fmt.Errorf("unknown column %s.%s", table, column)
	}

	query := fmt.Sprintf(
		"SELECT AVG(%s), MIN(%s), MAX(%s), COUNT(*) FROM %s",
		column, column, column, table)

	var stats ColumnStats
	if err := db.QueryRow(query).Scan(&stats.Avg, &stats.Min, &stats.Max, &stats.Count); err != nil {
		return nil, err
	}
	return &stats, nil
}
