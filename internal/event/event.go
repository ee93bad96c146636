package event

import (
	"encoding/json"
	"fmt"
)

// Category identifies one of the five fixed event kinds. The set is closed:
// every component dispatches exhaustively over these values, and the
// validator rejects anything else before it reaches the pipeline.
type Category string

const (
	CategoryTraffic        Category = "traffic_state"
	CategoryInfrastructure Category = "infrastructure_status"
	CategoryService        Category = "service_accessibility"
	CategoryEnvironment    Category = "environmental_conditions"
	CategorySystemHealth   Category = "system_health"
)

// Categories returns all known categories in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryTraffic,
		CategoryInfrastructure,
		CategoryService,
		CategoryEnvironment,
		CategorySystemHealth,
	}
}

// ParseCategory maps an event_type tag to its category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryTraffic, CategoryInfrastructure, CategoryService,
		CategoryEnvironment, CategorySystemHealth:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown event_type: %s", s)
}

// Suffix returns the channel suffix used on the data get/post topic families.
func (c Category) Suffix() string {
	switch c {
	case CategoryTraffic:
		return "trafficSensor"
	case CategoryInfrastructure:
		return "criticalInfrastructure"
	case CategoryService:
		return "essentialsAccessibility"
	case CategoryEnvironment:
		return "environmentQuality"
	case CategorySystemHealth:
		return "metaSensors"
	}
	return string(c)
}

// SourceLabel returns the source tag carried in alert records.
func (c Category) SourceLabel() string {
	switch c {
	case CategoryTraffic:
		return "urbanViability"
	case CategoryInfrastructure:
		return "criticalInfrastructure"
	case CategoryService:
		return "essentialsAccessibility"
	case CategoryEnvironment:
		return "environmentQuality"
	case CategorySystemHealth:
		return "metaSensors"
	}
	return string(c)
}

// Table returns the storage table the category's events flatten into.
// The table name equals the category tag by contract with the dashboard.
func (c Category) Table() string {
	return string(c)
}

// Event is a validated telemetry payload.
type Event interface {
	Category() Category
	Timestamp() string
	// SensorID derives the stable identity used to scope the sliding window,
	// "<category>:<primary-group-id>".
	SensorID() string
	// FieldValue returns the scalar at group/field. Group is empty for
	// top-level fields. ok is false when the event carries no such path.
	FieldValue(group, field string) (any, bool)
}

// Location identifies a fixed observation point in the city.
type Location struct {
	ID       string `json:"id"`
	District string `json:"district"`
}

// TrafficMetrics are the measured values of one traffic reading.
type TrafficMetrics struct {
	CongestionLevel string  `json:"congestion_level"`
	AverageSpeed    float64 `json:"average_speed"`
}

// TrafficState is a traffic sensor reading.
type TrafficState struct {
	EventType string         `json:"event_type"`
	Time      string         `json:"timestamp"`
	Location  Location       `json:"location"`
	Metrics   TrafficMetrics `json:"t_metrics"`
}

func (e *TrafficState) Category() Category { return CategoryTraffic }
func (e *TrafficState) Timestamp() string  { return e.Time }
func (e *TrafficState) SensorID() string   { return string(CategoryTraffic) + ":" + e.Location.ID }

func (e *TrafficState) FieldValue(group, field string) (any, bool) {
	switch group {
	case "location":
		switch field {
		case "id":
			return e.Location.ID, true
		case "district":
			return e.Location.District, true
		}
	case "t_metrics":
		switch field {
		case "congestion_level":
			return e.Metrics.CongestionLevel, true
		case "average_speed":
			return e.Metrics.AverageSpeed, true
		}
	}
	return nil, false
}

// InfrastructureRef identifies one piece of critical infrastructure.
type InfrastructureRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// InfrastructureMetrics are the measured values of one infrastructure reading.
type InfrastructureMetrics struct {
	CapacityPercentage float64 `json:"capacity_percentage"`
	VibrationLevel     float64 `json:"vibration_level"`
}

// InfrastructureStatus is a critical-infrastructure reading.
type InfrastructureStatus struct {
	EventType      string                `json:"event_type"`
	Time           string                `json:"timestamp"`
	Infrastructure InfrastructureRef     `json:"infrastructure"`
	Status         string                `json:"status"`
	Metrics        InfrastructureMetrics `json:"i_metrics"`
}

func (e *InfrastructureStatus) Category() Category { return CategoryInfrastructure }
func (e *InfrastructureStatus) Timestamp() string  { return e.Time }
func (e *InfrastructureStatus) SensorID() string {
	return string(CategoryInfrastructure) + ":" + e.Infrastructure.ID
}

func (e *InfrastructureStatus) FieldValue(group, field string) (any, bool) {
	switch group {
	case "":
		if field == "status" {
			return e.Status, true
		}
	case "infrastructure":
		switch field {
		case "id":
			return e.Infrastructure.ID, true
		case "type":
			return e.Infrastructure.Type, true
		}
	case "i_metrics":
		switch field {
		case "capacity_percentage":
			return e.Metrics.CapacityPercentage, true
		case "vibration_level":
			return e.Metrics.VibrationLevel, true
		}
	}
	return nil, false
}

// ServiceRef identifies one essential service.
type ServiceRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Accessibility describes how reachable an essential service currently is.
type Accessibility struct {
	Status              string  `json:"status"`
	EstimatedAccessTime float64 `json:"estimated_access_time"`
	CapacityPercentage  float64 `json:"capacity_percentage"`
}

// ServiceAccessibility is an essential-service reading.
type ServiceAccessibility struct {
	EventType     string        `json:"event_type"`
	Time          string        `json:"timestamp"`
	Service       ServiceRef    `json:"service"`
	Accessibility Accessibility `json:"accessibility"`
}

func (e *ServiceAccessibility) Category() Category { return CategoryService }
func (e *ServiceAccessibility) Timestamp() string  { return e.Time }
func (e *ServiceAccessibility) SensorID() string {
	return string(CategoryService) + ":" + e.Service.ID
}

func (e *ServiceAccessibility) FieldValue(group, field string) (any, bool) {
	switch group {
	case "service":
		switch field {
		case "id":
			return e.Service.ID, true
		case "type":
			return e.Service.Type, true
		}
	case "accessibility":
		switch field {
		case "status":
			return e.Accessibility.Status, true
		case "estimated_access_time":
			return e.Accessibility.EstimatedAccessTime, true
		case "capacity_percentage":
			return e.Accessibility.CapacityPercentage, true
		}
	}
	return nil, false
}

// EnvironmentMetrics are the measured values of one environmental reading.
type EnvironmentMetrics struct {
	RainfallMM         float64 `json:"rainfall_mm"`
	WindSpeedKMH       float64 `json:"wind_speed_kmh"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	HumidityPercentage float64 `json:"humidity_percentage"`
}

// EnvironmentalConditions is an environmental station reading.
type EnvironmentalConditions struct {
	EventType string             `json:"event_type"`
	Time      string             `json:"timestamp"`
	Location  Location           `json:"location"`
	Metrics   EnvironmentMetrics `json:"e_metrics"`
}

func (e *EnvironmentalConditions) Category() Category { return CategoryEnvironment }
func (e *EnvironmentalConditions) Timestamp() string  { return e.Time }
func (e *EnvironmentalConditions) SensorID() string {
	return string(CategoryEnvironment) + ":" + e.Location.ID
}

func (e *EnvironmentalConditions) FieldValue(group, field string) (any, bool) {
	switch group {
	case "location":
		switch field {
		case "id":
			return e.Location.ID, true
		case "district":
			return e.Location.District, true
		}
	case "e_metrics":
		switch field {
		case "rainfall_mm":
			return e.Metrics.RainfallMM, true
		case "wind_speed_kmh":
			return e.Metrics.WindSpeedKMH, true
		case "temperature_celsius":
			return e.Metrics.TemperatureCelsius, true
		case "humidity_percentage":
			return e.Metrics.HumidityPercentage, true
		}
	}
	return nil, false
}

// ComponentRef identifies one monitored system component.
type ComponentRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// HealthMetrics are the measured values of one system-health reading.
type HealthMetrics struct {
	Status              string  `json:"status"`
	LatencyMS           float64 `json:"latency_ms"`
	ErrorRatePercentage float64 `json:"error_rate_percentage"`
}

// SystemHealth is a meta-sensor reading about the platform itself.
type SystemHealth struct {
	EventType string        `json:"event_type"`
	Time      string        `json:"timestamp"`
	Component ComponentRef  `json:"component"`
	Health    HealthMetrics `json:"health"`
}

func (e *SystemHealth) Category() Category { return CategorySystemHealth }
func (e *SystemHealth) Timestamp() string  { return e.Time }
func (e *SystemHealth) SensorID() string {
	return string(CategorySystemHealth) + ":" + e.Component.ID
}

func (e *SystemHealth) FieldValue(group, field string) (any, bool) {
	switch group {
	case "component":
		switch field {
		case "id":
			return e.Component.ID, true
		case "type":
			return e.Component.Type, true
		}
	case "health":
		switch field {
		case "status":
			return e.Health.Status, true
		case "latency_ms":
			return e.Health.LatencyMS, true
		case "error_rate_percentage":
			return e.Health.ErrorRatePercentage, true
		}
	}
	return nil, false
}

// Decode unmarshals a raw payload into the typed variant for the category.
func Decode(c Category, raw []byte) (Event, error) {
	switch c {
	case CategoryTraffic:
		var e TrafficState
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case CategoryInfrastructure:
		var e InfrastructureStatus
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case CategoryService:
		var e ServiceAccessibility
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case CategoryEnvironment:
		var e EnvironmentalConditions
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case CategorySystemHealth:
		var e SystemHealth
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &e, nil
	}
	return nil, fmt.Errorf("unknown category: %s", c)
}
