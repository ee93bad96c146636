// Command query inspects the stored telemetry: the most recent committed
// rows per table, optional column statistics, and the cached latest reading
// of one sensor identity.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/udite/city-telemetry/internal/statecache"
	"github.com/udite/city-telemetry/internal/storage"
	"github.com/udite/city-telemetry/pkg/config"
)

func main() {
	limit := flag.Int("limit", 10, "rows per table, newest first")
	statsSpec := flag.String("stats", "", "numeric column to summarize, as table.column")
	sensor := flag.String("sensor", "", "sensor identity to read from the latest-reading cache")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := storage.Connect(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	printLatest(logger, db, *limit)

	if *statsSpec != "" {
		printStats(logger, db, *statsSpec)
	}

	if *sensor != "" {
		printCachedReading(logger, cfg, *sensor)
	}
}

func printLatest(logger *zap.Logger, db *storage.DB, limit int) {
	traffic, err := db.LatestTrafficStates(limit)
	if err != nil {
		logger.Fatal("failed to query traffic_state", zap.Error(err))
	}
	fmt.Printf("traffic_state (%d rows)\n", len(traffic))
	for _, r := range traffic {
		fmt.Printf("  %d %s %s/%s congestion=%s speed=%.1f\n",
			r.ID, r.Timestamp, r.LocationID, r.LocationDistrict, r.CongestionLevel, r.AverageSpeed)
	}

	infra, err := db.LatestInfrastructureStatuses(limit)
	if err != nil {
		logger.Fatal("failed to query infrastructure_status", zap.Error(err))
	}
	fmt.Printf("infrastructure_status (%d rows)\n", len(infra))
	for _, r := range infra {
		fmt.Printf("  %d %s %s/%s status=%s capacity=%.1f vibration=%.2f\n",
			r.ID, r.Timestamp, r.InfrastructureID, r.InfrastructureType,
			r.Status, r.CapacityPercentage, r.VibrationLevel)
	}

	services, err := db.LatestServiceAccessibilities(limit)
	if err != nil {
		logger.Fatal("failed to query service_accessibility", zap.Error(err))
	}
	fmt.Printf("service_accessibility (%d rows)\n", len(services))
	for _, r := range services {
		fmt.Printf("  %d %s %s/%s status=%s access_time=%.1f capacity=%.1f\n",
			r.ID, r.Timestamp, r.ServiceID, r.ServiceType,
			r.AccessibilityStatus, r.EstimatedAccessTime, r.CapacityPercentage)
	}

	env, err := db.LatestEnvironmentalConditions(limit)
	if err != nil {
		logger.Fatal("failed to query environmental_conditions", zap.Error(err))
	}
	fmt.Printf("environmental_conditions (%d rows)\n", len(env))
	for _, r := range env {
		fmt.Printf("  %d %s %s/%s rain=%.1f wind=%.1f temp=%.1f humidity=%.1f\n",
			r.ID, r.Timestamp, r.LocationID, r.LocationDistrict,
			r.RainfallMM, r.WindSpeedKMH, r.TemperatureCelsius, r.HumidityPercentage)
	}

	health, err := db.LatestSystemHealths(limit)
	if err != nil {
		logger.Fatal("failed to query system_health", zap.Error(err))
	}
	fmt.Printf("system_health (%d rows)\n", len(health))
	for _, r := range health {
		fmt.Printf("  %d %s %s/%s status=%s latency=%.1f error_rate=%.2f\n",
			r.ID, r.Timestamp, r.ComponentID, r.ComponentType,
			r.HealthStatus, r.LatencyMS, r.ErrorRatePercentage)
	}
}

func printStats(logger *zap.Logger, db *storage.DB, spec string) {
	table, column, ok := strings.Cut(spec, ".")
	if !ok {
		logger.Fatal("stats spec must be table.column", zap.String("spec", spec))
	}
	stats, err := db.Stats(table, column)
	if err != nil {
		logger.Fatal("failed to query column stats", zap.Error(err))
	}
	fmt.Printf("%s.%s avg=%.2f min=%.2f max=%.2f count=%d\n",
		table, column, stats.Avg.Float64, stats.Min.Float64, stats.Max.Float64, stats.Count)
}

func printCachedReading(logger *zap.Logger, cfg *config.Config, sensor string) {
	if !cfg.Redis.Enabled() {
		logger.Fatal("latest-reading cache is disabled: REDIS_ADDR is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	cache := statecache.New(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, found, err := cache.GetLatest(ctx, sensor)
	if err != nil {
		logger.Fatal("failed to read latest-reading cache", zap.Error(err))
	}
	if !found {
		fmt.Printf("no cached reading for %s\n", sensor)
		return
	}
	fmt.Printf("latest %s: %s\n", sensor, payload)
}
