package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lifehub/studycore/internal/apperr"
)

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{t: t, base: []string{
		"--user", "u1",
		"--database.dsn", filepath.Join(dir, "study.db"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--sync.repos_dir", filepath.Join(dir, "repos"),
		"--log.mode", "prod",
	}}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append(append([]string{}, c.base...), args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

func (c *cli) mustRun(stdin string, args ...string) string {
	c.t.Helper()
	out, err := c.run(stdin, args...)
	if err != nil {
		c.t.Fatalf("studyctl %v: %v\noutput:\n%s", args, err, out)
	}
	return out
}

func TestImportDueAndReview(t *testing.T) {
	c := newCLI(t)
	src := t.TempDir()
	deck := "Q: capital of France\nA: Paris\n---\nQ: capital of Italy\nA: Rome\n"
	if err := os.WriteFile(filepath.Join(src, "geo.md"), []byte(deck), 0o644); err != nil {
		t.Fatal(err)
	}

	out := c.mustRun("", "import", "geo", src)
	if !strings.Contains(out, "2 new") {
		t.Errorf("import output = %q, want 2 new cards", out)
	}

	out = c.mustRun("", "--deck", "geo", "due")
	for _, want := range []string{"capital of France", "capital of Italy", "new"} {
		if !strings.Contains(out, want) {
			t.Errorf("due output missing %q:\n%s", want, out)
		}
	}
	rows := strings.Split(strings.TrimSpace(out), "\n")
	if len(rows) != 3 {
		t.Fatalf("Expected a header and 2 rows, got:\n%s", out)
	}
	cardID := strings.Fields(rows[1])[0]
	if out := c.mustRun("", "history", cardID); !strings.Contains(out, "no reviews") {
		t.Errorf("history before review:\n%s", out)
	}

	out = c.mustRun("\n3\n\n4\n", "--deck", "geo", "review")
	if !strings.Contains(out, "reviewed 2 of 2, 2 correct, score 100%") {
		t.Errorf("review output:\n%s", out)
	}

	out = c.mustRun("", "due")
	if !strings.Contains(out, "nothing due") {
		t.Errorf("due after review:\n%s", out)
	}

	out = c.mustRun("", "sessions")
	if !strings.Contains(out, "COMPLETED") || !strings.Contains(out, "2/2") {
		t.Errorf("sessions output:\n%s", out)
	}

	out = c.mustRun("", "history", cardID)
	if !strings.Contains(out, "NEW") || strings.Contains(out, "no reviews") {
		t.Errorf("history after review:\n%s", out)
	}
	if _, err := c.run("", "history", "missing"); !apperr.IsNotFound(err) {
		t.Errorf("history of unknown card: err = %v, want not found", err)
	}
}

func TestReviewQuitCancelsSession(t *testing.T) {
	c := newCLI(t)
	src := t.TempDir()
	deck := "Q: one\nA: 1\n---\nQ: two\nA: 2\n"
	if err := os.WriteFile(filepath.Join(src, "n.md"), []byte(deck), 0o644); err != nil {
		t.Fatal(err)
	}
	c.mustRun("", "import", "numbers", src)

	out := c.mustRun("\n1\nq\n", "review")
	if !strings.Contains(out, "cancelled after 1 of 2, 0 correct, 2 left") {
		t.Errorf("review output:\n%s", out)
	}
	out = c.mustRun("", "sessions")
	if !strings.Contains(out, "CANCELLED") || !strings.Contains(out, "1/2") {
		t.Errorf("sessions output:\n%s", out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("sessions output:\n%s", out)
	}
	sessionID := strings.Fields(lines[1])[0]
	out = c.mustRun("", "session", sessionID)
	for _, want := range []string{"CANCELLED", "reviewed 1 of 2", "REQUEUED", "PENDING"} {
		if !strings.Contains(out, want) {
			t.Errorf("session output missing %q:\n%s", want, out)
		}
	}

	_, err := c.run("", "session", "nope")
	if exitCode(err) != 3 {
		t.Errorf("unknown session: err = %v, exit code %d", err, exitCode(err))
	}
}

func TestTopicRetention(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("", "parent", "subject", "Chemistry")
	fields := strings.Fields(out)
	if len(fields) != 2 || fields[0] != "SUBJECT" {
		t.Fatalf("parent output = %q", out)
	}

	out = c.mustRun("", "--parent-kind", "subject", "--parent-id", fields[1], "topic", "Acids")
	fields = strings.Fields(out)
	if len(fields) != 3 || fields[2] != "TO_LEARN" {
		t.Fatalf("topic output = %q", out)
	}
	topicID := fields[1]

	for _, r := range []string{"2", "2", "1"} {
		c.mustRun("", "rate", topicID, r)
	}
	out = c.mustRun("", "retention")
	if !strings.Contains(out, "Acids") || !strings.Contains(out, "NEEDS_REVIEW") {
		t.Errorf("retention output:\n%s", out)
	}

	_, err := c.run("", "rate", topicID, "six")
	if !apperr.IsValidation(err) {
		t.Errorf("rate with a word: err = %v, want validation error", err)
	}
}

func TestSettings(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("", "settings")
	if !strings.Contains(out, "algorithm LEITNER") {
		t.Errorf("default settings:\n%s", out)
	}
	c.mustRun("", "--study.algorithm", "FSRS_VECTO", "--study.new_cards_per_day", "5", "--save", "settings")
	out = c.mustRun("", "settings")
	if !strings.Contains(out, "algorithm FSRS_VECTO") || !strings.Contains(out, "new cards per day 5") {
		t.Errorf("saved settings:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	c := newCLI(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "no command"},
		{"unknown command", []string{"fly"}, "unknown command"},
		{"wrong arity", []string{"topic"}, "expects 1 argument"},
		{"unknown deck", []string{"--deck", "nope", "due"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run("", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validationf("rating", "out of range"), 2},
		{"not found", apperr.NotFoundf("deck", "deck %s not found", "x"), 3},
		{"invalid state", apperr.InvalidStatef("session", "session %s is finished", "x"), 4},
		{"other", errors.New("disk full"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
