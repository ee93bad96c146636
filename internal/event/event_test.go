package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("weather_state")
	assert.Error(t, err)
}

func TestCategory_Suffix(t *testing.T) {
	assert.Equal(t, "trafficSensor", CategoryTraffic.Suffix())
	assert.Equal(t, "criticalInfrastructure", CategoryInfrastructure.Suffix())
	assert.Equal(t, "essentialsAccessibility", CategoryService.Suffix())
	assert.Equal(t, "environmentQuality", CategoryEnvironment.Suffix())
	assert.Equal(t, "metaSensors", CategorySystemHealth.Suffix())
}

func TestCategory_SourceLabel(t *testing.T) {
	assert.Equal(t, "urbanViability", CategoryTraffic.SourceLabel())
	assert.Equal(t, "metaSensors", CategorySystemHealth.SourceLabel())
}

func TestDecode_Traffic(t *testing.T) {
	raw := []byte(`{
		"event_type": "traffic_state",
		"timestamp": "2024-03-01T08:00:00",
		"location": {"id": "road-17", "district": "D3"},
		"t_metrics": {"congestion_level": "HIGH", "average_speed": 22.5}
	}`)

	evt, err := Decode(CategoryTraffic, raw)
	require.NoError(t, err)

	ts, ok := evt.(*TrafficState)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T08:00:00", ts.Timestamp())
	assert.Equal(t, "road-17", ts.Location.ID)
	assert.Equal(t, "D3", ts.Location.District)
	assert.Equal(t, "HIGH", ts.Metrics.CongestionLevel)
	assert.Equal(t, 22.5, ts.Metrics.AverageSpeed)
}

func TestDecode_UnknownCategory(t *testing.T) {
	_, err := Decode(Category("bogus"), []byte(`{}`))
	assert.Error(t, err)
}

func TestSensorID(t *testing.T) {
	tests := []struct {
		evt  Event
		want string
	}{
		{&TrafficState{Location: Location{ID: "road-17"}}, "traffic_state:road-17"},
		{&InfrastructureStatus{Infrastructure: InfrastructureRef{ID: "infra-2"}}, "infrastructure_status:infra-2"},
		{&ServiceAccessibility{Service: ServiceRef{ID: "service-9"}}, "service_accessibility:service-9"},
		{&EnvironmentalConditions{Location: Location{ID: "station-4"}}, "environmental_conditions:station-4"},
		{&SystemHealth{Component: ComponentRef{ID: "broker-1"}}, "system_health:broker-1"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.evt.SensorID())
	}
}

func TestFieldValue(t *testing.T) {
	evt := &SystemHealth{
		Component: ComponentRef{ID: "broker-1", Type: "MQTT_BROKER"},
		Health:    HealthMetrics{Status: "DEGRADED", LatencyMS: 740, ErrorRatePercentage: 12.5},
	}

	v, ok := evt.FieldValue("health", "status")
	require.True(t, ok)
	assert.Equal(t, "DEGRADED", v)

	v, ok = evt.FieldValue("health", "latency_ms")
	require.True(t, ok)
	assert.Equal(t, 740.0, v)

	_, ok = evt.FieldValue("health", "uptime")
	assert.False(t, ok)

	_, ok = evt.FieldValue("", "status")
	assert.False(t, ok)
}

func TestFieldValue_TopLevel(t *testing.T) {
	evt := &InfrastructureStatus{Status: "WARNING"}

	v, ok := evt.FieldValue("", "status")
	require.True(t, ok)
	assert.Equal(t, "WARNING", v)
}
