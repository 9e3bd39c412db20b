// PowerCore - Device Power Management Daemon
//
// This is the main entry point for the PowerCore daemon. PowerCore
// manages the power state of a fleet of devices:
//   - Per-device power state machine (active, suspended, low-power, off)
//   - Reference-counted runtime power management
//   - Power domains with automatic member cascade
//   - Dependency-ordered system-wide suspend and resume
//
// State changes are exposed over a REST/WebSocket API and mirrored to
// MQTT and InfluxDB for external tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/calegray/powercore/migrations"

	"github.com/calegray/powercore/internal/api"
	"github.com/calegray/powercore/internal/driver"
	"github.com/calegray/powercore/internal/history"
	"github.com/calegray/powercore/internal/infrastructure/config"
	"github.com/calegray/powercore/internal/infrastructure/database"
	"github.com/calegray/powercore/internal/infrastructure/influxdb"
	"github.com/calegray/powercore/internal/infrastructure/logging"
	"github.com/calegray/powercore/internal/infrastructure/mqtt"
	"github.com/calegray/powercore/internal/pm"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting PowerCore",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the power engine from the static device table
	registry := pm.NewRegistry()
	engine := pm.NewEngine(registry)
	engine.SetLogger(log)
	engine.SetSyncTimeout(cfg.GetSyncTimeout())

	if buildErr := buildDevices(cfg, registry, engine, log); buildErr != nil {
		return fmt.Errorf("building device table: %w", buildErr)
	}

	// Validate the dependency graph up front; a cycle is a config error
	order, err := engine.BuildOrder()
	if err != nil {
		return fmt.Errorf("resolving device order: %w", err)
	}
	log.Info("power engine initialised",
		"devices", registry.Len(),
		"sync_timeout", cfg.GetSyncTimeout(),
	)
	for i, dev := range order {
		log.Debug("device order", "position", i, "device", dev.Name())
	}

	// Persist every transition to the history table
	historyRepo := history.NewSQLiteRepository(db.DB)
	engine.Notify(history.NewSink(historyRepo, log))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(discErr error) {
			log.Warn("MQTT disconnected", "error", discErr)
		})

		engine.Notify(mqtt.NewTransitionSink(mqttClient, log))
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})

		engine.Notify(influxdb.NewTransitionSink(influxClient, log))
	} else {
		log.Info("InfluxDB disabled")
	}

	// WebSocket hub broadcasts transitions to connected clients
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)
	engine.Notify(api.TransitionSink(hub))

	// Start the API server
	suspendTarget, err := pm.ParseState(cfg.Power.SuspendTarget)
	if err != nil {
		return fmt.Errorf("parsing suspend target: %w", err)
	}

	server, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Security:      cfg.Security,
		Logger:        log,
		Engine:        engine,
		History:       historyRepo,
		SuspendTarget: suspendTarget,
		ExternalHub:   hub,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("PowerCore stopped")
	return nil
}

// buildDevices populates the registry from the configured device table.
//
// Devices are created in two passes: first every device is registered
// with its driver and initial state, then domain membership is wired,
// since a domain device may be declared after its members.
func buildDevices(cfg *config.Config, registry *pm.Registry, engine *pm.Engine, log *logging.Logger) error {
	for _, entry := range cfg.Devices {
		var action pm.ActionFunc
		latency := time.Duration(entry.Latency) * time.Millisecond

		switch entry.Driver {
		case "", "sim":
			action = driver.NewSim(driver.SimConfig{Latency: latency}, log).Action
		case "sim-domain":
			action = driver.NewSimDomain(driver.SimConfig{Latency: latency}, engine, log).Action
		default:
			return fmt.Errorf("device %s: unknown driver %q", entry.Name, entry.Driver)
		}

		dev := pm.NewDevice(pm.DeviceConfig{
			Name:           entry.Name,
			Action:         action,
			Requires:       entry.Requires,
			WakeupCapable:  entry.WakeupCapable,
			IgnoreChildren: entry.IgnoreChildren,
		})

		if err := registry.Add(dev); err != nil {
			return fmt.Errorf("registering %s: %w", entry.Name, err)
		}

		if entry.InitialState == "suspended" {
			if err := dev.InitSuspended(); err != nil {
				return fmt.Errorf("initialising %s: %w", entry.Name, err)
			}
		}
		if entry.RuntimePM {
			engine.RuntimeEnable(dev)
		}

		log.Debug("device registered",
			"device", entry.Name,
			"driver", entry.Driver,
			"initial_state", dev.State().String(),
			"runtime_pm", entry.RuntimePM,
		)
	}

	// Second pass: domain membership
	for _, entry := range cfg.Devices {
		if entry.Domain == "" {
			continue
		}
		child, err := registry.Get(entry.Name)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", entry.Name, err)
		}
		domain, err := registry.Get(entry.Domain)
		if err != nil {
			return fmt.Errorf("device %s: domain %s: %w", entry.Name, entry.Domain, err)
		}
		if err := engine.DomainAdd(child, domain); err != nil {
			return fmt.Errorf("adding %s to domain %s: %w", entry.Name, entry.Domain, err)
		}
	}

	return nil
}

// getConfigPath returns the configuration file path.
// Uses POWERCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("POWERCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
