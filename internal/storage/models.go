package storage

// Row types mirror the flattened column layout of the five event tables.
// This layout is a compatibility surface for the read-only dashboard and
// must be preserved.

// TrafficStateRow is one row of the traffic_state table.
type TrafficStateRow struct {
	ID               int64
	Timestamp        string
	LocationID       string
	LocationDistrict string
	CongestionLevel  string
	AverageSpeed     float64
}

// InfrastructureStatusRow is one row of the infrastructure_status table.
type InfrastructureStatusRow struct {
	ID                 int64
	Timestamp          string
	InfrastructureID   string
	InfrastructureType string
	Status             string
	CapacityPercentage float64
	VibrationLevel     float64
}

// ServiceAccessibilityRow is one row of the service_accessibility table.
type ServiceAccessibilityRow struct {
	ID                  int64
	Timestamp           string
	ServiceID           string
	ServiceType         string
	AccessibilityStatus string
	EstimatedAccessTime float64
	CapacityPercentage  float64
}

// EnvironmentalConditionsRow is one row of the environmental_conditions table.
type EnvironmentalConditionsRow struct {
	ID                 int64
	Timestamp          string
	LocationID         string
	LocationDistrict   string
	RainfallMM         float64
	WindSpeedKMH       float64
	TemperatureCelsius float64
	HumidityPercentage float64
}

// SystemHealthRow is one row of the system_health table.
type SystemHealthRow struct {
	ID                  int64
	Timestamp           string
	ComponentID         string
	ComponentType       string
	HealthStatus        string
	LatencyMS           float64
	ErrorRatePercentage float64
}
