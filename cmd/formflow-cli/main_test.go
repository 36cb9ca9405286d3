package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/sources"
)

func TestReadValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.json")
	if err := os.WriteFile(path, []byte(`{"143097":"Yes","143136":12.5}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	vals, err := readValues(path)
	if err != nil {
		t.Fatalf("read values: %v", err)
	}
	if vals["143097"] != "Yes" || vals["143136"] != 12.5 {
		t.Fatalf("values = %v", vals)
	}

	if err := os.WriteFile(path, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readValues(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpenSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	set, closeSet, err := openSources(ctx, config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("stub sources: %v", err)
	}
	closeSet()
	if set.Columns == nil || set.Submissions == nil {
		t.Fatalf("stub set incomplete")
	}

	if _, _, err := openSources(ctx, config{seed: "seed.yaml"}, zap.NewNop()); err == nil {
		t.Fatalf("expected -seed without -db to fail")
	}

	seed := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(seed, []byte("users:\n  - {name: Alex Johnson}\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	set, closeSet, err = openSources(ctx, config{db: ":memory:", seed: seed}, zap.NewNop())
	if err != nil {
		t.Fatalf("sqlite sources: %v", err)
	}
	defer closeSet()
	users, err := set.PredefinedList(ctx, sources.Criteria{Criteria: "userType", Value: "Normal"})
	if err != nil || len(users) != 1 || users[0] != "Alex Johnson" {
		t.Fatalf("users = %v, %v", users, err)
	}
}
