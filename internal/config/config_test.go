package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	f := NewFlagSet("test")
	if err := f.Parse(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return Load(f)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "--user", "u1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "studycore.db" {
		t.Errorf("Unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Retention.Window != 3 || cfg.Retention.ReviewAtOrBelow != 2 || cfg.Retention.MasterAtOrAbove != 4 {
		t.Errorf("Unexpected retention defaults: %+v", cfg.Retention)
	}
	if cfg.Sync.Interval != time.Hour || cfg.Retention.SummaryInterval != 24*time.Hour {
		t.Errorf("Unexpected intervals: %v, %v", cfg.Sync.Interval, cfg.Retention.SummaryInterval)
	}
	st := cfg.Study.Settings()
	if st.Algorithm != domain.AlgorithmLeitner || st.NewCardsPerDay != 20 || math.Abs(st.DesiredRetention-0.9) > 1e-9 {
		t.Errorf("Unexpected study settings: %+v", st)
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studycore.yaml")
	yml := `
user: from-file
database:
  dsn: file.db
study:
  algorithm: FSRS_VECTO
  new_cards_per_day: 7
retention:
  window: 4
sync:
  interval: 30m
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STUDYCORE_DATABASE__DSN", "env.db")
	t.Setenv("STUDYCORE_STUDY__NEW_CARDS_PER_DAY", "9")

	cfg, err := load(t, "--config", path, "--study.new_cards_per_day", "11")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	testCases := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"file value", cfg.User, "from-file"},
		{"env beats file", cfg.Database.DSN, "env.db"},
		{"flag beats env", cfg.Study.NewCardsPerDay, 11},
		{"file beats default", cfg.Study.Algorithm, "FSRS_VECTO"},
		{"nested file value", cfg.Retention.Window, 4},
		{"duration from file", cfg.Sync.Interval, 30 * time.Minute},
		{"untouched default", cfg.Log.Mode, "dev"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, tc.got)
			}
		})
	}
}

func TestDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STUDYCORE_USER=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("STUDYCORE_USER") })

	f := NewFlagSet("test")
	if err := f.Parse([]string{"--env-file", path}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.User != "from-dotenv" {
		t.Errorf("Expected user from .env, got %q", cfg.User)
	}
}

func TestValidation(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"missing user", nil},
		{"unknown algorithm", []string{"--user", "u", "--study.algorithm", "SM2"}},
		{"retention out of range", []string{"--user", "u", "--study.desired_retention", "1.5"}},
		{"unknown driver", []string{"--user", "u", "--database.driver", "mysql"}},
		{"inverted thresholds", []string{"--user", "u", "--retention.review_at_or_below", "4.5"}},
		{"empty window", []string{"--user", "u", "--retention.window", "0"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(t, tc.args...); !apperr.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}
