package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lantern/internal/audit"
	"lantern/internal/auth"
	"lantern/internal/dataprep/application"
	"lantern/internal/dataprep/infrastructure/filecache"
	"lantern/internal/dataprep/infrastructure/postgres"
	"lantern/internal/dataprep/interfaces"
	"lantern/internal/notify"
	"lantern/internal/observability/metrics"
	"lantern/internal/simulation"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv load error: %v", err)
	}
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	pipelineCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("pipeline config error: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	}
	metrics.Init(db, logger)

	source, err := buildSource(pipelineCfg, db)
	if err != nil {
		logger.Fatalf("table source error: %v", err)
	}

	engine, err := simulation.NewEngine(simulation.ConfigFromEnv())
	if err != nil {
		logger.Fatalf("simulation engine error: %v", err)
	}

	notifier, closeNotifiers, err := buildNotifier(cfg)
	if err != nil {
		logger.Fatalf("notifier error: %v", err)
	}
	defer closeNotifiers()

	opts := []application.Option{application.WithLogger(logger)}
	if notifier.Len() > 0 {
		opts = append(opts, application.WithNotifier(notifier))
	}
	service, err := application.NewPreparationService(source, engine, pipelineCfg, opts...)
	if err != nil {
		logger.Fatalf("preparation service error: %v", err)
	}

	var auditLogger audit.Logger = audit.NewLogLogger(logger)
	if db != nil {
		repo := audit.NewRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("audit schema error: %v", err)
		}
		auditLogger = repo
	}

	handler, err := interfaces.NewHandler(service, auditLogger, logger)
	if err != nil {
		logger.Fatalf("simulation handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/simulate"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	if cfg.JWTSecret == "" {
		logger.Printf("auth disabled: AUTH_JWT_SECRET not set")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/simulate", handler)
	mux.Handle("/api/v1/simulate", handler)
	mux.Handle("/api/v1/simulate/report.pdf", handler)
	mux.Handle("/api/v1/datasets/export.xlsx", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(corsMiddleware(authMiddleware.Wrap(mux), cfg.CORSOrigin), logger),
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeoutSec) * time.Second,
	}
	logger.Printf("http listening on %s (source=%s block=%d seed=%d)", cfg.HTTPAddr, pipelineCfg.Source, pipelineCfg.BlockSize, pipelineCfg.RandomSeed)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	CORSOrigin      string
	WebhookURL      string
	NotifyTemplate  string
	MQTTBroker      string
	MQTTTopic       string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	ReadTimeoutSec  int
}

func loadConfig() config {
	return config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8000"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CORSOrigin:      getenvDefault("CORS_ALLOW_ORIGIN", "*"),
		WebhookURL:      getenvDefault("RUN_WEBHOOK_URL", ""),
		NotifyTemplate:  getenvDefault("RUN_NOTIFY_TEMPLATE", ""),
		MQTTBroker:      getenvDefault("MQTT_BROKER", ""),
		MQTTTopic:       getenvDefault("MQTT_TOPIC", "lantern/runs"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "lantern-server"),
		MQTTUsername:    getenvDefault("MQTT_USERNAME", ""),
		MQTTPassword:    getenvDefault("MQTT_PASSWORD", ""),
		ReadTimeoutSec:  getenvIntDefault("HTTP_READ_HEADER_TIMEOUT_SECONDS", 10),
	}
}

func buildSource(cfg application.Config, db *sql.DB) (application.TableSource, error) {
	switch cfg.Source {
	case application.SourcePostgres:
		if db == nil {
			return nil, errors.New("source postgres requires DATABASE_URL or PG_DSN")
		}
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		source := postgres.NewTableSource(db, postgres.WithLocation(loc))
		if err := source.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		return source, nil
	default:
		return filecache.NewSource(cfg.CacheDir), nil
	}
}

func buildNotifier(cfg config) (*notify.MultiNotifier, func(), error) {
	var notifiers []notify.Notifier
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if cfg.WebhookURL != "" {
		tpl, err := notify.NewTemplate(cfg.NotifyTemplate)
		if err != nil {
			return nil, closeAll, err
		}
		webhook, err := notify.NewWebhookNotifier(cfg.WebhookURL, tpl)
		if err != nil {
			return nil, closeAll, err
		}
		notifiers = append(notifiers, webhook)
	}
	if cfg.MQTTBroker != "" {
		mqttNotifier, err := notify.NewMQTTNotifier(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTUsername, cfg.MQTTPassword, cfg.MQTTTopic)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, mqttNotifier.Close)
		notifiers = append(notifiers, mqttNotifier)
	}
	return notify.NewMultiNotifier(notifiers...), closeAll, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

// corsMiddleware answers preflight requests for the browser frontend.
func corsMiddleware(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Expose-Headers", "X-Run-ID")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
