package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("COUNTDOWN_CONFIG", "")
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func addTimer(t *testing.T, name, category, duration string) int64 {
	t.Helper()
	out, err := runCLI(t, "add", "--name", name, "--category", category, "--duration", duration, "--alerts", "50")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var id int64
	if _, err := fmt.Sscanf(out, "Created timer %d", &id); err != nil {
		t.Fatalf("cannot read id from %q: %v", out, err)
	}
	return id
}

func TestAddStartPauseList(t *testing.T) {
	setupCLI(t)
	id := addTimer(t, "Focus", "Work", "25")

	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Focus") || !strings.Contains(out, "paused") || !strings.Contains(out, "25:00") {
		t.Fatalf("list output = %q", out)
	}

	out, err = runCLI(t, "start", fmt.Sprint(id))
	if err != nil || !strings.Contains(out, "started") {
		t.Fatalf("start = %q, %v", out, err)
	}
	out, err = runCLI(t, "start", fmt.Sprint(id))
	if err != nil || !strings.Contains(out, "unchanged") {
		t.Fatalf("second start = %q, %v", out, err)
	}

	out, err = runCLI(t, "list", "--category", "Work")
	if err != nil || !strings.Contains(out, "running") {
		t.Fatalf("running list = %q, %v", out, err)
	}

	out, err = runCLI(t, "pause", fmt.Sprint(id))
	if err != nil || !strings.Contains(out, "paused") {
		t.Fatalf("pause = %q, %v", out, err)
	}
}

func TestUnknownTimer(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "reset", "42"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("reset unknown id err = %v", err)
	}
	if _, err := runCLI(t, "start", "abc"); err == nil {
		t.Fatal("start accepted a non-numeric id")
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "add", "--name", "A", "--category", "B", "--duration", "soon"); err == nil {
		t.Fatal("add accepted an unreadable duration")
	}
	if _, err := runCLI(t, "add", "--name", "A", "--category", "B", "--duration", "5", "--alerts", "100"); err == nil {
		t.Fatal("add accepted a 100% alert")
	}
	out, err := runCLI(t, "list")
	if err != nil || !strings.Contains(out, "No timers found.") {
		t.Fatalf("list after rejected adds = %q, %v", out, err)
	}
}

func TestCategoryCommands(t *testing.T) {
	setupCLI(t)
	addTimer(t, "Tea", "Kitchen", "3")
	addTimer(t, "Eggs", "Kitchen", "8")
	addTimer(t, "Focus", "Work", "25")

	out, err := runCLI(t, "category", "start", "Kitchen")
	if err != nil || !strings.Contains(out, "2 timer(s)") {
		t.Fatalf("category start = %q, %v", out, err)
	}

	out, err = runCLI(t, "category")
	if err != nil {
		t.Fatalf("category list: %v", err)
	}
	if !strings.Contains(out, "Kitchen") || !strings.Contains(out, "2 running") || !strings.Contains(out, "Work") {
		t.Fatalf("category list = %q", out)
	}

	if _, err := runCLI(t, "category", "explode", "Kitchen"); err == nil {
		t.Fatal("unknown category operation accepted")
	}
}

func TestClearNeedsYes(t *testing.T) {
	setupCLI(t)
	addTimer(t, "Tea", "Kitchen", "3")

	if _, err := runCLI(t, "clear"); err == nil {
		t.Fatal("clear ran without --yes")
	}
	out, _ := runCLI(t, "list")
	if !strings.Contains(out, "Tea") {
		t.Fatalf("timer lost without confirmation: %q", out)
	}

	if _, err := runCLI(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear --yes: %v", err)
	}
	out, _ = runCLI(t, "list")
	if !strings.Contains(out, "No timers found.") {
		t.Fatalf("list after clear = %q", out)
	}
}

func TestHistoryAndExport(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, "history")
	if err != nil || !strings.Contains(out, "No completed timers yet.") {
		t.Fatalf("empty history = %q, %v", out, err)
	}

	exportTo := filepath.Join(dir, "export")
	out, err = runCLI(t, "export", "--dir", exportTo)
	if err != nil || !strings.Contains(out, "Exported 0 item(s)") {
		t.Fatalf("export = %q, %v", out, err)
	}
	data, err := os.ReadFile(filepath.Join(exportTo, "timer_history.json"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"exportDate"`) || !strings.Contains(string(data), `"items": []`) {
		t.Fatalf("export document = %s", data)
	}
}

func TestWatchWithoutRunningTimers(t *testing.T) {
	setupCLI(t)
	addTimer(t, "Tea", "Kitchen", "3")

	out, err := runCLI(t, "watch")
	if err != nil || !strings.Contains(out, "No running timers.") {
		t.Fatalf("watch = %q, %v", out, err)
	}
}

func TestPrintTimersGroupsByCategory(t *testing.T) {
	setupCLI(t)
	addTimer(t, "B1", "Beta", "1")
	addTimer(t, "A1", "Alpha", "1")
	addTimer(t, "B2", "Beta", "1")

	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "Beta\n") != 1 {
		t.Fatalf("category header repeated: %q", out)
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
		t.Fatalf("categories not sorted: %q", out)
	}
}

func TestFlagsDoNotCarryOverBetweenRuns(t *testing.T) {
	setupCLI(t)
	addTimer(t, "Tea", "Kitchen", "3")
	addTimer(t, "Focus", "Work", "25")

	out, err := runCLI(t, "list", "--category", "Work")
	if err != nil || strings.Contains(out, "Tea") {
		t.Fatalf("filtered list = %q, %v", out, err)
	}

	out, err = runCLI(t, "list")
	if err != nil || !strings.Contains(out, "Tea") || !strings.Contains(out, "Focus") {
		t.Fatalf("category filter leaked into the next run: %q, %v", out, err)
	}

	if _, err := runCLI(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear --yes: %v", err)
	}
	addTimer(t, "Tea", "Kitchen", "3")
	if _, err := runCLI(t, "clear"); err == nil {
		t.Fatal("--yes leaked into the next clear")
	}
}
