//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"reviewking/internal/domain"
	mysqlrepo "reviewking/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func TestRepo_MySQL_EventsAndImports(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewking",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviewking")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	events := []domain.Event{
		{Category: "review", Action: "extracted", ClientID: "c1", Country: "US", Language: "en", UserAgent: "ua", IP: "1.2.3.4"},
		{Category: "review", Action: "imported", ClientID: "c1"},
		{Category: "widget", Action: "viewed", ClientID: "c2"},
	}
	for _, e := range events {
		if err := repo.LogEvent(ctx, e); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	recent, err := repo.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent events: got %d, want 3", len(recent))
	}
	for _, e := range recent {
		if e.CreatedAt.IsZero() {
			t.Fatalf("event missing created_at: %+v", e)
		}
	}

	n, err := repo.CountEvents(ctx, "review", "")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 2 {
		t.Fatalf("review events: got %d, want 2", n)
	}
	if n, _ = repo.CountEvents(ctx, "", ""); n != 3 {
		t.Fatalf("all events: got %d, want 3", n)
	}

	rec := domain.ImportRecord{
		ReviewID:     "r-1",
		SessionID:    "s-1",
		ProductID:    "111",
		Platform:     domain.PlatformAliExpress,
		QualityScore: 7,
	}
	if err := repo.LogImport(ctx, rec); err != nil {
		t.Fatalf("LogImport: %v", err)
	}

	// Re-import refreshes the row instead of duplicating it.
	rec.QualityScore = 9
	if err := repo.LogImport(ctx, rec); err != nil {
		t.Fatalf("LogImport again: %v", err)
	}

	var count, score int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*), MAX(quality_score) FROM imported_reviews WHERE review_id='r-1'").
		Scan(&count, &score); err != nil {
		t.Fatalf("verify import: %v", err)
	}
	if count != 1 || score != 9 {
		t.Fatalf("import row: count=%d score=%d", count, score)
	}
}
