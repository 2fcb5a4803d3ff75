// Command prompt asks for the community parameters on the terminal and runs
// one simulation against the configured source pool.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"lantern/internal/dataprep/application"
	"lantern/internal/dataprep/infrastructure/filecache"
	"lantern/internal/dataprep/infrastructure/postgres"
	"lantern/internal/simulation"
)

func main() {
	_ = godotenv.Load()

	cfg, err := application.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: historyFilePath(),
	})
	if err != nil {
		log.Fatalf("readline init failed: %v", err)
	}
	defer func() { _ = rl.Close() }()

	a := asker{in: rl, out: rl.Stdout()}
	params, err := a.collect()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		log.Fatalf("table source error: %v", err)
	}
	defer closeSource()

	engine, err := simulation.NewEngine(simulation.ConfigFromEnv())
	if err != nil {
		log.Fatalf("engine error: %v", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	service, err := application.NewPreparationService(source, engine, cfg, application.WithLogger(logger))
	if err != nil {
		log.Fatalf("service error: %v", err)
	}

	run, err := service.Simulate(context.Background(), application.PrepareRequest{
		CommunitySize: params.CommunitySize,
		Season:        params.Season.String(),
		PVPercentage:  params.PVPercentage,
		SDPercentage:  params.SDPercentage,
		WithBattery:   params.WithBattery,
	})
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	printRun(os.Stdout, run)
}

func openSource(cfg application.Config) (application.TableSource, func(), error) {
	if cfg.Source != application.SourcePostgres {
		return filecache.NewSource(cfg.CacheDir), func() {}, nil
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("PG_DSN")
	}
	if dsn == "" {
		return nil, nil, errors.New("source postgres requires DATABASE_URL or PG_DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewTableSource(db), func() { _ = db.Close() }, nil
}

func printRun(w io.Writer, run *application.SimulationRun) {
	res := run.Result
	fmt.Fprintf(w, "run %s: %d timesteps\n", run.ID, run.Dataset.Steps())
	fmt.Fprintf(w, "  production   %12.3f kWh\n", res.EnergyMetrics.TotalProduction)
	fmt.Fprintf(w, "  consumption  %12.3f kWh\n", res.EnergyMetrics.TotalConsumption)
	fmt.Fprintf(w, "  grid import  %12.3f kWh\n", res.EnergyMetrics.TotalGridImport)
	fmt.Fprintf(w, "  grid export  %12.3f kWh\n", res.EnergyMetrics.TotalGridExport)
	fmt.Fprintf(w, "  traded       %12.3f kWh\n", res.MarketMetrics.TradingVolume)
	fmt.Fprintf(w, "  cost with LEC     %10.2f\n", res.CostMetrics.CostWithLEC)
	fmt.Fprintf(w, "  cost without LEC  %10.2f\n", res.CostMetrics.CostWithoutLEC)
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

func historyFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(cacheDir, "lantern")
	_ = os.MkdirAll(dir, 0750)
	return filepath.Join(dir, "prompt_history")
}
