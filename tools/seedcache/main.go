// Command seedcache writes a synthetic PV/Load source pool: one hourly year,
// R buildings for PV and R*B apartments for load.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"lantern/internal/dataprep/infrastructure/filecache"
	"lantern/internal/dataprep/infrastructure/postgres"
)

type config struct {
	dir       string
	pvFile    string
	loadFile  string
	buildings int
	blockSize int
	year      int
	seed      int64
	pg        bool
	dsn       string
}

func main() {
	_ = godotenv.Load()
	cfg := parseConfig()
	if cfg.buildings <= 0 {
		log.Fatal("buildings must be > 0")
	}
	if cfg.blockSize <= 0 {
		log.Fatal("block must be > 0")
	}

	gen := newGenerator(cfg.seed, cfg.year)
	log.Printf("generating pool: buildings=%d block=%d year=%d seed=%d", cfg.buildings, cfg.blockSize, cfg.year, cfg.seed)
	pv, err := gen.pvTable(cfg.buildings)
	if err != nil {
		log.Fatalf("generate pv: %v", err)
	}
	load, err := gen.loadTable(cfg.buildings * cfg.blockSize)
	if err != nil {
		log.Fatalf("generate load: %v", err)
	}

	if cfg.pg {
		if cfg.dsn == "" {
			log.Fatal("PG_DSN or DATABASE_URL is required with -pg")
		}
		db, err := sql.Open("pgx", cfg.dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		store := postgres.NewTableSource(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		if err := store.SaveTable(ctx, cfg.pvFile, pv); err != nil {
			log.Fatalf("save pv: %v", err)
		}
		if err := store.SaveTable(ctx, cfg.loadFile, load); err != nil {
			log.Fatalf("save load: %v", err)
		}
		log.Printf("seeded postgres tables %q and %q", cfg.pvFile, cfg.loadFile)
		return
	}

	pvPath := filepath.Join(cfg.dir, cfg.pvFile)
	if err := filecache.WriteTable(pvPath, pv, "building"); err != nil {
		log.Fatalf("write pv: %v", err)
	}
	loadPath := filepath.Join(cfg.dir, cfg.loadFile)
	if err := filecache.WriteTable(loadPath, load, "apartment"); err != nil {
		log.Fatalf("write load: %v", err)
	}
	log.Printf("wrote %s and %s", pvPath, loadPath)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dir, "dir", getenvDefault("CACHE_DIR", "cache"), "cache directory")
	flag.StringVar(&cfg.pvFile, "pv", getenvDefault("PV_CACHE_FILE", "pv.csv"), "pv table name (.csv or .xlsx)")
	flag.StringVar(&cfg.loadFile, "load", getenvDefault("LOAD_CACHE_FILE", "load.csv"), "load table name (.csv or .xlsx)")
	flag.IntVar(&cfg.buildings, "buildings", 150, "number of buildings")
	flag.IntVar(&cfg.blockSize, "block", 4, "apartments per building")
	flag.IntVar(&cfg.year, "year", 2023, "calendar year of the hourly axis")
	flag.Int64Var(&cfg.seed, "seed", 7, "generator seed")
	flag.BoolVar(&cfg.pg, "pg", false, "write into postgres instead of cache files")
	flag.StringVar(&cfg.dsn, "dsn", getenvDefault("PG_DSN", getenvDefault("DATABASE_URL", "")), "postgres dsn")
	flag.Parse()
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
