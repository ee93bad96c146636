package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udite/city-telemetry/internal/event"
)

func TestLookup_AllCategories(t *testing.T) {
	for _, c := range event.Categories() {
		schema, ok := Lookup(c)
		require.True(t, ok, "no schema for %s", c)
		assert.NotEmpty(t, schema.Required, "no required fields for %s", c)
		assert.NotEmpty(t, schema.Constraints, "no constraints for %s", c)
		assert.NotEmpty(t, schema.Thresholds, "no thresholds for %s", c)
	}

	_, ok := Lookup(event.Category("bogus"))
	assert.False(t, ok)
}

func TestLookup_TrafficSchema(t *testing.T) {
	schema, ok := Lookup(event.CategoryTraffic)
	require.True(t, ok)

	require.Len(t, schema.Required, 2)
	assert.Equal(t, "location", schema.Required[0].Name)
	assert.Equal(t, []string{"id", "district"}, schema.Required[0].Subfields)
	assert.Equal(t, "t_metrics", schema.Required[1].Name)

	congestion := schema.Constraints[0]
	assert.Equal(t, FieldPath{Group: "t_metrics", Field: "congestion_level"}, congestion.Path)
	assert.Equal(t, ConstraintEnum, congestion.Constraint.Kind)
	assert.Equal(t, []string{"LOW", "MODERATE", "HIGH", "CRITICAL"}, congestion.Constraint.Allowed)

	speed := schema.Constraints[1]
	assert.Equal(t, ConstraintRange, speed.Constraint.Kind)
	assert.Equal(t, 0.0, speed.Constraint.Min)
	assert.Equal(t, 200.0, speed.Constraint.Max)
}

func TestLookup_InfrastructureTopLevelStatus(t *testing.T) {
	schema, ok := Lookup(event.CategoryInfrastructure)
	require.True(t, ok)

	// "status" is a required scalar, not a group.
	var status *GroupSpec
	for i := range schema.Required {
		if schema.Required[i].Name == "status" {
			status = &schema.Required[i]
		}
	}
	require.NotNil(t, status)
	assert.Empty(t, status.Subfields)

	// Its threshold rule addresses a top-level path.
	rule := schema.Thresholds[0]
	assert.Equal(t, FieldPath{Field: "status"}, rule.Path)
	assert.Equal(t, ThresholdEnumFrequency, rule.Kind)
	assert.Equal(t, []string{"WARNING", "CRITICAL"}, rule.BadValues)
	assert.Equal(t, 5, rule.MinCount)
}

func TestLookup_SystemHealthThresholds(t *testing.T) {
	schema, ok := Lookup(event.CategorySystemHealth)
	require.True(t, ok)
	require.Len(t, schema.Thresholds, 3)

	status := schema.Thresholds[0]
	assert.Equal(t, ThresholdEnumFrequency, status.Kind)
	assert.Equal(t, []string{"DEGRADED", "FAILURE"}, status.BadValues)
	assert.Equal(t, 5, status.MinCount)

	latency := schema.Thresholds[1]
	assert.Equal(t, ThresholdAverage, latency.Kind)
	assert.Equal(t, OpGreater, latency.Op)
	assert.Equal(t, 500.0, latency.Limit)
}

func TestFieldPath_String(t *testing.T) {
	assert.Equal(t, "status", FieldPath{Field: "status"}.String())
	assert.Equal(t, "health.latency_ms", FieldPath{Group: "health", Field: "latency_ms"}.String())
}
