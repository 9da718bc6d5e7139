package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rotodraft/draftroom/internal/analytics"
	"github.com/rotodraft/draftroom/internal/auth"
	"github.com/rotodraft/draftroom/internal/catalog"
	"github.com/rotodraft/draftroom/internal/config"
	"github.com/rotodraft/draftroom/internal/dal"
	"github.com/rotodraft/draftroom/internal/engine"
	"github.com/rotodraft/draftroom/internal/handlers"
	"github.com/rotodraft/draftroom/internal/logger"
	"github.com/rotodraft/draftroom/internal/mocks"
	"github.com/rotodraft/draftroom/internal/pubsub"
)

var (
	configStore  dal.ConfigStore
	authProvider auth.AuthProvider
	recorder     analytics.Recorder
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitWithLevel(cfg.LogLevel)
	logger.Info("Starting draftroom service", "environment", cfg.Environment)

	// Player catalog: projection CSVs from disk, or the built-in sample set.
	var cat *catalog.Catalog
	if cfg.DataDir != "" {
		cat, err = catalog.LoadDir(cfg.DataDir)
		if err != nil {
			logger.Error("Failed to load projections", "error", err, "dir", cfg.DataDir)
			log.Fatalf("Failed to load projections from %s: %v", cfg.DataDir, err)
		}
		logger.Info("Projections loaded", "dir", cfg.DataDir, "players", cat.Len())
	} else {
		cat = catalog.Sample()
		logger.Info("Using built-in sample catalog", "players", cat.Len())
	}

	teamNames := cfg.TeamNames
	if len(teamNames) == 0 {
		for i := 1; i <= cfg.TeamCount; i++ {
			teamNames = append(teamNames, fmt.Sprintf("Team %d", i))
		}
	}
	eng := engine.New(cat, teamNames)
	logger.Info("Draft engine ready", "teams", len(teamNames))

	// Keeper-config persistence
	switch cfg.DBDriver {
	case "memory":
		configStore = dal.NewMemoryStore()
		logger.Info("Using in-memory config store")
	case "file":
		configStore, err = dal.NewFileStore(cfg.SavesDir)
		if err != nil {
			logger.Error("Failed to initialize file store", "error", err)
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		logger.Info("Using file config store", "dir", cfg.SavesDir)
	case "sqlite":
		configStore, err = dal.NewSQLiteStore(cfg.SQLiteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required for the postgres driver")
			log.Fatal("DATABASE_URL is required for the postgres driver")
		}
		configStore, err = dal.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	default:
		logger.Error("Unknown DB_DRIVER", "driver", cfg.DBDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, file, sqlite, postgres)", cfg.DBDriver)
	}
	defer configStore.Close()

	// Event bus: embedded NATS in development, real JetStream in production.
	var upstream pubsub.Upstream
	if cfg.Development() {
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:    0, // random available port
			Subject: cfg.NATSSubject,
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		upstream = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		realNats, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		upstream = realNats
		logger.Info("Connected to NATS", "url", cfg.NATSURL)
	}
	ps := pubsub.NewWithUpstream(upstream)

	// Pick analytics: ClickHouse in production, in-memory recorder otherwise.
	if cfg.Development() {
		recorder = mocks.NewMockRecorder()
	} else {
		recorder, err = analytics.NewClient(cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePassword)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouseAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	}
	defer recorder.Close()

	// Authentication: mock in development, OIDC in production.
	if cfg.Development() {
		logger.Info("Using mock authentication for local development")
		authProvider = auth.NewMockAuth()
	} else {
		if cfg.OIDCBaseURL == "" || cfg.OIDCClientID == "" || cfg.OIDCClientSecret == "" {
			logger.Error("OIDC_BASE_URL, OIDC_CLIENT_ID, and OIDC_CLIENT_SECRET are required for production")
			log.Fatal("OIDC_BASE_URL, OIDC_CLIENT_ID, and OIDC_CLIENT_SECRET are required for production")
		}
		authProvider = auth.NewOIDCAuth(&auth.OIDCConfig{
			IssuerURL:    cfg.OIDCBaseURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to OIDC provider", "url", cfg.OIDCBaseURL)
	}

	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	api := handlers.NewAPIHandlers(eng, configStore, ps, recorder)

	// Draft API. Lifecycle mutations require a session; in-draft picks stay
	// open like the rest of the API.
	mux.HandleFunc("/api/draft/state", api.GetDraftState)
	mux.HandleFunc("/api/draft/start", authProvider.Middleware(api.StartDraft))
	mux.HandleFunc("/api/draft/pick", api.DraftPick)
	mux.HandleFunc("/api/draft/undo", authProvider.Middleware(api.UndoPick))
	mux.HandleFunc("/api/draft/end", authProvider.Middleware(api.EndDraft))
	mux.HandleFunc("/api/draft/standings", api.GetStandings)
	mux.HandleFunc("/api/draft/available", api.GetAvailable)

	// Keepers API
	mux.HandleFunc("/api/keepers", api.ListKeepers)
	mux.HandleFunc("/api/keepers/add", api.AddKeeper)
	mux.HandleFunc("/api/keepers/remove", api.RemoveKeeper)

	// Saved keeper configs
	mux.HandleFunc("/api/configs", api.ListConfigs)
	mux.HandleFunc("/api/configs/save", api.SaveConfig)
	mux.HandleFunc("/api/configs/load", api.LoadConfig)
	mux.HandleFunc("/api/configs/delete", api.DeleteConfig)

	// Simulator API
	mux.HandleFunc("/api/sim/order", api.UploadOrder)
	mux.HandleFunc("/api/sim/run", api.RunSim)
	mux.HandleFunc("/api/sim/advance", api.AdvanceSim)
	mux.HandleFunc("/api/sim/pick", api.SimPick)
	mux.HandleFunc("/api/sim/state", api.SimState)

	// Market data
	mux.HandleFunc("/api/market/adp", api.GetADP)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	addr := "0.0.0.0:" + cfg.Port
	logger.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if configStore != nil {
		if _, err := configStore.ListConfigs(); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["store"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["store"] = map[string]interface{}{"status": "healthy"}
		}
	} else {
		checks["store"] = map[string]interface{}{"status": "not_configured"}
	}

	if recorder != nil {
		checks["analytics"] = map[string]interface{}{"status": "healthy"}
	} else {
		checks["analytics"] = map[string]interface{}{"status": "not_configured"}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	if configStore != nil {
		if _, err := configStore.ListConfigs(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "store_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
