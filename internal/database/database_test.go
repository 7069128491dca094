package database

import (
	"io/fs"
	"testing"

	"classplan/internal/config"
)

func TestDriverName(t *testing.T) {
	tests := map[string]string{
		"":         "postgres",
		"postgres": "postgres",
		"pq":       "postgres",
		"pgx":      "pgx",
	}
	for in, want := range tests {
		got, err := driverName(in)
		if err != nil || got != want {
			t.Errorf("driverName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := driverName("mysql"); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}

func TestDSN(t *testing.T) {
	got := DSN(config.DBConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "classplan", SSLMode: "disable",
	})
	want := "host=db port=5433 user=u password=p dbname=classplan sslmode=disable"
	if got != want {
		t.Fatalf("DSN = %q", got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, name := range []string{"migrations/0001_init.up.sql", "migrations/0001_init.down.sql"} {
		if _, err := fs.Stat(migrationsFS, name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
