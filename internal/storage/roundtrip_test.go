package storage

import (
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/udite/city-telemetry/internal/event"
)

// These tests drive the real Insert SQL and the real Latest* scans against a
// mocked driver, pinning the column order shared by the write and read paths.

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &DB{DB: mockDB}, mock
}

// expectBatchedInsert sets up the expectations for one savepoint-wrapped
// insert followed by a batch commit.
func expectBatchedInsert(mock sqlmock.Sqlmock, table string, args ...driver.Value) {
	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO " + table).WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("RELEASE SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func saveAndStop(t *testing.T, db *DB, evt event.Event) {
	t.Helper()
	w := NewWriter(db, 10, time.Hour, zaptest.NewLogger(t), nil)
	require.NoError(t, w.Save(evt))
	require.NoError(t, w.Stop())
}

func TestDB_RoundTripTrafficState(t *testing.T) {
	db, mock := newMockDB(t)

	expectBatchedInsert(mock, "traffic_state", "t1", "road-1", "D1", "HIGH", 12.5)
	saveAndStop(t, db, &event.TrafficState{
		EventType: string(event.CategoryTraffic),
		Time:      "t1",
		Location:  event.Location{ID: "road-1", District: "D1"},
		Metrics:   event.TrafficMetrics{CongestionLevel: "HIGH", AverageSpeed: 12.5},
	})

	mock.ExpectQuery("FROM traffic_state").WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"id", "timestamp", "location_id", "location_district",
			"congestion_level", "average_speed"}).
			AddRow(int64(1), "t1", "road-1", "D1", "HIGH", 12.5))

	got, err := db.LatestTrafficStates(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &TrafficStateRow{
		ID: 1, Timestamp: "t1", LocationID: "road-1", LocationDistrict: "D1",
		CongestionLevel: "HIGH", AverageSpeed: 12.5,
	}, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RoundTripInfrastructureStatus(t *testing.T) {
	db, mock := newMockDB(t)

	expectBatchedInsert(mock, "infrastructure_status",
		"t1", "bridge-7", "BRIDGE", "DEGRADED", 61.0, 4.2)
	saveAndStop(t, db, &event.InfrastructureStatus{
		EventType:      string(event.CategoryInfrastructure),
		Time:           "t1",
		Infrastructure: event.InfrastructureRef{ID: "bridge-7", Type: "BRIDGE"},
		Status:         "DEGRADED",
		Metrics:        event.InfrastructureMetrics{CapacityPercentage: 61.0, VibrationLevel: 4.2},
	})

	mock.ExpectQuery("FROM infrastructure_status").WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"id", "timestamp", "infrastructure_id", "infrastructure_type",
			"status", "capacity_percentage", "vibration_level"}).
			AddRow(int64(1), "t1", "bridge-7", "BRIDGE", "DEGRADED", 61.0, 4.2))

	got, err := db.LatestInfrastructureStatuses(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &InfrastructureStatusRow{
		ID: 1, Timestamp: "t1", InfrastructureID: "bridge-7", InfrastructureType: "BRIDGE",
		Status: "DEGRADED", CapacityPercentage: 61.0, VibrationLevel: 4.2,
	}, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RoundTripServiceAccessibility(t *testing.T) {
	db, mock := newMockDB(t)

	expectBatchedInsert(mock, "service_accessibility",
		"t1", "clinic-3", "HEALTHCARE", "LIMITED", 25.0, 80.0)
	saveAndStop(t, db, &event.ServiceAccessibility{
		EventType: string(event.CategoryService),
		Time:      "t1",
		Service:   event.ServiceRef{ID: "clinic-3", Type: "HEALTHCARE"},
		Accessibility: event.Accessibility{
			Status: "LIMITED", EstimatedAccessTime: 25.0, CapacityPercentage: 80.0,
		},
	})

	mock.ExpectQuery("FROM service_accessibility").WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"id", "timestamp", "service_id", "service_type",
			"accessibility_status", "estimated_access_time", "capacity_percentage"}).
			AddRow(int64(1), "t1", "clinic-3", "HEALTHCARE", "LIMITED", 25.0, 80.0))

	got, err := db.LatestServiceAccessibilities(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &ServiceAccessibilityRow{
		ID: 1, Timestamp: "t1", ServiceID: "clinic-3", ServiceType: "HEALTHCARE",
		AccessibilityStatus: "LIMITED", EstimatedAccessTime: 25.0, CapacityPercentage: 80.0,
	}, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RoundTripEnvironmentalConditions(t *testing.T) {
	db, mock := newMockDB(t)

	expectBatchedInsert(mock, "environmental_conditions",
		"t1", "station-9", "D4", 12.0, 55.5, 21.0, 70.0)
	saveAndStop(t, db, &event.EnvironmentalConditions{
		EventType: string(event.CategoryEnvironment),
		Time:      "t1",
		Location:  event.Location{ID: "station-9", District: "D4"},
		Metrics: event.EnvironmentMetrics{
			RainfallMM: 12.0, WindSpeedKMH: 55.5, TemperatureCelsius: 21.0, HumidityPercentage: 70.0,
		},
	})

	mock.ExpectQuery("FROM environmental_conditions").WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"id", "timestamp", "location_id", "location_district",
			"rainfall_mm", "wind_speed_kmh", "temperature_celsius", "humidity_percentage"}).
			AddRow(int64(1), "t1", "station-9", "D4", 12.0, 55.5, 21.0, 70.0))

	got, err := db.LatestEnvironmentalConditions(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &EnvironmentalConditionsRow{
		ID: 1, Timestamp: "t1", LocationID: "station-9", LocationDistrict: "D4",
		RainfallMM: 12.0, WindSpeedKMH: 55.5, TemperatureCelsius: 21.0, HumidityPercentage: 70.0,
	}, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RoundTripSystemHealth(t *testing.T) {
	db, mock := newMockDB(t)

	expectBatchedInsert(mock, "system_health",
		"t1", "broker-1", "MQTT_BROKER", "HEALTHY", 35.0, 0.2)
	saveAndStop(t, db, &event.SystemHealth{
		EventType: string(event.CategorySystemHealth),
		Time:      "t1",
		Component: event.ComponentRef{ID: "broker-1", Type: "MQTT_BROKER"},
		Health:    event.HealthMetrics{Status: "HEALTHY", LatencyMS: 35.0, ErrorRatePercentage: 0.2},
	})

	mock.ExpectQuery("FROM system_health").WithArgs(1).WillReturnRows(
		sqlmock.NewRows([]string{"id", "timestamp", "component_id", "component_type",
			"health_status", "latency_ms", "error_rate_percentage"}).
			AddRow(int64(1), "t1", "broker-1", "MQTT_BROKER", "HEALTHY", 35.0, 0.2))

	got, err := db.LatestSystemHealths(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &SystemHealthRow{
		ID: 1, Timestamp: "t1", ComponentID: "broker-1", ComponentType: "MQTT_BROKER",
		HealthStatus: "HEALTHY", LatencyMS: 35.0, ErrorRatePercentage: 0.2,
	}, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_InsertFailureRollsBackSavepoint(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO traffic_state").WillReturnError(errors.New("value too long"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.Insert(trafficEvent("road-bad"))
	require.ErrorContains(t, err, "failed to insert")

	// The batch survives the rejected row and accepts the next one.
	mock.ExpectExec("SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO traffic_state").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("RELEASE SAVEPOINT event_row").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, db.Insert(trafficEvent("road-1")))
	require.NoError(t, db.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_StatsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM environmental_conditions").WillReturnRows(
		sqlmock.NewRows([]string{"avg", "min", "max", "count"}).
			AddRow(42.5, 10.0, 95.0, int64(120)))

	stats, err := db.Stats("environmental_conditions", "wind_speed_kmh")
	require.NoError(t, err)
	assert.Equal(t, 42.5, stats.Avg.Float64)
	assert.Equal(t, 10.0, stats.Min.Float64)
	assert.Equal(t, 95.0, stats.Max.Float64)
	assert.Equal(t, int64(120), stats.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
