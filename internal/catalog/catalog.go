// Package catalog holds the static per-category schemas: required groups and
// subfields, enum/range value constraints, and the alert-threshold rules the
// evaluator applies over sensor windows. Pure data, no behavior.
package catalog

import "github.com/udite/city-telemetry/internal/event"

// FieldPath addresses one scalar in a payload. Group is empty for top-level
// fields such as infrastructure_status' "status".
type FieldPath struct {
	Group string
	Field string
}

func (p FieldPath) String() string {
	if p.Group == "" {
		return p.Field
	}
	return p.Group + "." + p.Field
}

// ConstraintKind distinguishes the two validation rule shapes.
type ConstraintKind int

const (
	ConstraintEnum ConstraintKind = iota
	ConstraintRange
)

// Constraint is a single value-coherence rule. Enum constraints carry the
// allowed set; range constraints carry an inclusive [Min, Max] interval.
type Constraint struct {
	Kind    ConstraintKind
	Allowed []string
	Min     float64
	Max     float64
}

// FieldConstraint binds a constraint to a payload path.
type FieldConstraint struct {
	Path       FieldPath
	Constraint Constraint
}

// GroupSpec names a required top-level field. A nil Subfields slice means the
// field is a scalar; otherwise the field is a group whose listed subfields
// must all be present.
type GroupSpec struct {
	Name      string
	Subfields []string
}

// ThresholdKind distinguishes the two alert rule shapes.
type ThresholdKind int

const (
	// ThresholdEnumFrequency fires when enough window entries carry a value
	// from the bad set.
	ThresholdEnumFrequency ThresholdKind = iota
	// ThresholdAverage fires when the window mean crosses the limit in the
	// rule's direction.
	ThresholdAverage
)

// CompareOp is the direction of an average threshold.
type CompareOp int

const (
	OpGreater CompareOp = iota
	OpLess
)

// Threshold is one alert rule over a sensor window.
type Threshold struct {
	Path      FieldPath
	Kind      ThresholdKind
	BadValues []string
	MinCount  int
	Op        CompareOp
	Limit     float64
}

// Schema is everything the pipeline knows about one category.
type Schema struct {
	Required    []GroupSpec
	Constraints []FieldConstraint
	Thresholds  []Threshold
}

var schemas = map[event.Category]Schema{
	event.CategoryTraffic: {
		Required: []GroupSpec{
			{Name: "location", Subfields: []string{"id", "district"}},
			{Name: "t_metrics", Subfields: []string{"congestion_level", "average_speed"}},
		},
		Constraints: []FieldConstraint{
			{
				Path:       FieldPath{Group: "t_metrics", Field: "congestion_level"},
				Constraint: Constraint{Kind: ConstraintEnum, Allowed: []string{"LOW", "MODERATE", "HIGH", "CRITICAL"}},
			},
			{
				Path:       FieldPath{Group: "t_metrics", Field: "average_speed"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 200.0},
			},
		},
		Thresholds: []Threshold{
			{
				Path:      FieldPath{Group: "t_metrics", Field: "congestion_level"},
				Kind:      ThresholdEnumFrequency,
				BadValues: []string{"HIGH", "CRITICAL"},
				MinCount:  10,
			},
			{
				Path:  FieldPath{Group: "t_metrics", Field: "average_speed"},
				Kind:  ThresholdAverage,
				Op:    OpLess,
				Limit: 5.0,
			},
		},
	},
	event.CategoryInfrastructure: {
		Required: []GroupSpec{
			{Name: "infrastructure", Subfields: []string{"id", "type"}},
			{Name: "status"},
			{Name: "i_metrics", Subfields: []string{"capacity_percentage", "vibration_level"}},
		},
		Constraints: []FieldConstraint{
			{
				Path:       FieldPath{Field: "status"},
				Constraint: Constraint{Kind: ConstraintEnum, Allowed: []string{"OPERATIONAL", "MAINTENANCE", "WARNING", "CRITICAL"}},
			},
			{
				Path:       FieldPath{Group: "i_metrics", Field: "capacity_percentage"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 100.0},
			},
			{
				Path:       FieldPath{Group: "i_metrics", Field: "vibration_level"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 100.0},
			},
		},
		Thresholds: []Threshold{
			{
				Path:      FieldPath{Field: "status"},
				Kind:      ThresholdEnumFrequency,
				BadValues: []string{"WARNING", "CRITICAL"},
				MinCount:  5,
			},
			{
				Path:  FieldPath{Group: "i_metrics", Field: "vibration_level"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 50.0,
			},
		},
	},
	event.CategoryService: {
		Required: []GroupSpec{
			{Name: "service", Subfields: []string{"id", "type"}},
			{Name: "accessibility", Subfields: []string{"status", "estimated_access_time", "capacity_percentage"}},
		},
		Constraints: []FieldConstraint{
			{
				Path:       FieldPath{Group: "accessibility", Field: "status"},
				Constraint: Constraint{Kind: ConstraintEnum, Allowed: []string{"AVAILABLE", "FULL", "CLOSED"}},
			},
			{
				Path:       FieldPath{Group: "accessibility", Field: "estimated_access_time"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 300.0},
			},
			{
				Path:       FieldPath{Group: "accessibility", Field: "capacity_percentage"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 100.0},
			},
		},
		Thresholds: []Threshold{
			{
				Path:      FieldPath{Group: "accessibility", Field: "status"},
				Kind:      ThresholdEnumFrequency,
				BadValues: []string{"CLOSED"},
				MinCount:  15,
			},
			{
				Path:  FieldPath{Group: "accessibility", Field: "capacity_percentage"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 95.0,
			},
		},
	},
	event.CategoryEnvironment: {
		Required: []GroupSpec{
			{Name: "location", Subfields: []string{"id", "district"}},
			{Name: "e_metrics", Subfields: []string{"rainfall_mm", "wind_speed_kmh", "temperature_celsius", "humidity_percentage"}},
		},
		Constraints: []FieldConstraint{
			{
				Path:       FieldPath{Group: "e_metrics", Field: "rainfall_mm"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 1000.0},
			},
			{
				Path:       FieldPath{Group: "e_metrics", Field: "wind_speed_kmh"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 300.0},
			},
			{
				Path:       FieldPath{Group: "e_metrics", Field: "temperature_celsius"},
				Constraint: Constraint{Kind: ConstraintRange, Min: -50.0, Max: 60.0},
			},
			{
				Path:       FieldPath{Group: "e_metrics", Field: "humidity_percentage"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 100.0},
			},
		},
		Thresholds: []Threshold{
			{
				Path:  FieldPath{Group: "e_metrics", Field: "wind_speed_kmh"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 80.0,
			},
			{
				Path:  FieldPath{Group: "e_metrics", Field: "rainfall_mm"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 50.0,
			},
			{
				Path:  FieldPath{Group: "e_metrics", Field: "temperature_celsius"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 45.0,
			},
		},
	},
	event.CategorySystemHealth: {
		Required: []GroupSpec{
			{Name: "component", Subfields: []string{"id", "type"}},
			{Name: "health", Subfields: []string{"status", "latency_ms", "error_rate_percentage"}},
		},
		Constraints: []FieldConstraint{
			{
				Path:       FieldPath{Group: "health", Field: "status"},
				Constraint: Constraint{Kind: ConstraintEnum, Allowed: []string{"HEALTHY", "DEGRADED", "FAILURE"}},
			},
			{
				Path:       FieldPath{Group: "health", Field: "latency_ms"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 10000.0},
			},
			{
				Path:       FieldPath{Group: "health", Field: "error_rate_percentage"},
				Constraint: Constraint{Kind: ConstraintRange, Min: 0.0, Max: 100.0},
			},
		},
		Thresholds: []Threshold{
			{
				Path:      FieldPath{Group: "health", Field: "status"},
				Kind:      ThresholdEnumFrequency,
				BadValues: []string{"DEGRADED", "FAILURE"},
				MinCount:  5,
			},
			{
				Path:  FieldPath{Group: "health", Field: "latency_ms"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 500.0,
			},
			{
				Path:  FieldPath{Group: "health", Field: "error_rate_percentage"},
				Kind:  ThresholdAverage,
				Op:    OpGreater,
				Limit: 10.0,
			},
		},
	},
}

// Lookup returns the schema for a category.
func Lookup(c event.Category) (Schema, bool) {
	s, ok := schemas[c]
	return s, ok
}
