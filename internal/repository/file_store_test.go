package repository_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"countdown/internal/model"
	"countdown/internal/repository"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := repository.NewFileStore(fs, "/data", quietLogger())
	ctx := context.Background()

	if got := store.LoadTimers(ctx); len(got) != 0 {
		t.Fatalf("LoadTimers with no file = %+v", got)
	}
	if err := store.SaveTimers(ctx, []model.Timer{sampleTimer(5)}); err != nil {
		t.Fatalf("SaveTimers: %v", err)
	}
	got := store.LoadTimers(ctx)
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("LoadTimers = %+v", got)
	}

	if ok, _ := afero.Exists(fs, "/data/timers.json.tmp"); ok {
		t.Error("temp file left behind after save")
	}
}

func TestFileStoreCorruptFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := repository.NewFileStore(fs, "/data", quietLogger())
	ctx := context.Background()

	if err := afero.WriteFile(fs, "/data/timers.json", []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/data/timer_history.json", []byte(`"a string"`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := store.LoadTimers(ctx); len(got) != 0 {
		t.Errorf("LoadTimers on corrupt file = %+v", got)
	}
	if got := store.LoadHistory(ctx); len(got) != 0 {
		t.Errorf("LoadHistory on non-array = %+v", got)
	}
}

func TestFileStoreClearAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := repository.NewFileStore(fs, "/data", quietLogger())
	ctx := context.Background()

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll with no files: %v", err)
	}
	if err := store.SaveHistory(ctx, []model.TimerHistoryItem{{ID: 1, Name: "x"}}); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/data/timer_history.json"); ok {
		t.Error("history file still present after ClearAll")
	}
}

func TestWriteExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := repository.WriteExport(fs, "/out", []byte(`{"items":[]}`))
	if err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	if path != "/out/timer_history.json" {
		t.Errorf("path = %q", path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil || string(data) != `{"items":[]}` {
		t.Errorf("export contents = %q, err %v", data, err)
	}
}
