package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	dataprep "lantern/internal/dataprep/domain"
	"lantern/internal/dataprep/infrastructure/postgres"
)

func TestTableSource_SaveLoadRoundTrip(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	source := postgres.NewTableSource(db, postgres.WithTable("ec_timeseries_test"))
	if err := source.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	const name = "pv-integration.csv"
	_ = source.DeleteTable(ctx, name)
	defer func() { _ = source.DeleteTable(ctx, name) }()

	start := time.Date(2023, time.February, 28, 23, 0, 0, 0, time.UTC)
	columns := []time.Time{start, start.Add(time.Hour)}
	want, err := dataprep.NewTable(columns, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := source.SaveTable(ctx, name, want); err != nil {
		t.Fatalf("save table: %v", err)
	}

	got, err := source.LoadTable(ctx, name)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	if got.Rows() != 3 || got.Cols() != 2 {
		t.Fatalf("shape mismatch: got=%dx%d", got.Rows(), got.Cols())
	}
	if got.At(2, 1) != 6 {
		t.Fatalf("value mismatch: got=%v want=6", got.At(2, 1))
	}
	if !got.Column(0).Equal(start) {
		t.Fatalf("column mismatch: got=%s want=%s", got.Column(0), start)
	}

	zone := time.FixedZone("CET", 3600)
	zoned := postgres.NewTableSource(db, postgres.WithTable("ec_timeseries_test"), postgres.WithLocation(zone))
	local, err := zoned.LoadTable(ctx, name)
	if err != nil {
		t.Fatalf("load zoned table: %v", err)
	}
	if ts := local.Column(1); ts.Month() != time.March || ts.Day() != 1 || ts.Hour() != 1 {
		t.Fatalf("zoned column mismatch: got=%s", ts)
	}

	_, err = source.LoadTable(ctx, "absent.csv")
	if !errors.Is(err, dataprep.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}
