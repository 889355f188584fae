package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/idilsaglam/questlog/internal/config"
	"github.com/idilsaglam/questlog/internal/generate"
	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/store/memstore"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.Storage{
			Driver:    "memory",
			TasksKey:  config.DefaultTasksKey,
			QuestsKey: config.DefaultQuestsKey,
			Timeout:   time.Second,
		},
		Log: config.Log{Level: "error"},
		UI:  config.UI{Theme: "mono", Kind: "task"},
	}
}

type harness struct {
	backend *memstore.Store
	gen     generate.Generator
}

func newHarness() *harness { return &harness{backend: memstore.New()} }

func (h *harness) run(args ...string) (int, string) {
	var out bytes.Buffer
	code := Execute(context.Background(), args,
		WithConfig(testConfig()),
		WithBackend(h.backend),
		WithOutput(&out, &out),
		WithGenerators(func(model.Kind) generate.Generator { return h.gen }),
	)
	return code, out.String()
}

func (h *harness) tasks(t *testing.T) []model.Task {
	t.Helper()
	raw, ok := h.backend.Raw(config.DefaultTasksKey)
	if !ok {
		return nil
	}
	var items []model.Task
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("stored tasks: %v", err)
	}
	return items
}

func TestAddAndList(t *testing.T) {
	h := newHarness()
	if code, out := h.run("add", "Fix", "login", "bug", "-c", "bug", "-a", "dana"); code != 0 {
		t.Fatalf("add: exit %d: %s", code, out)
	}
	h.run("add", "Write docs", "-c", "documentation")

	items := h.tasks(t)
	if len(items) != 2 || items[0].Title != "Write docs" {
		t.Fatalf("expected newest first, got %+v", items)
	}
	if items[1].Title != "Fix login bug" || items[1].Category != model.TaskBug || items[1].Assignee() != "dana" {
		t.Errorf("unexpected task %+v", items[1])
	}

	code, out := h.run("ls")
	if code != 0 {
		t.Fatalf("ls: exit %d", code)
	}
	for _, want := range []string{" 1. [ ] ", "Write docs", " 2. [ ] ", "[bug] Fix login bug @dana", "Total 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}
}

func TestAddDefaultsCategory(t *testing.T) {
	h := newHarness()
	h.run("add", "Tidy up")
	if items := h.tasks(t); items[0].Category != model.TaskGeneral {
		t.Errorf("expected general, got %q", items[0].Category)
	}
}

func TestListFiltersKeepNumbers(t *testing.T) {
	h := newHarness()
	h.run("add", "Fix login", "-c", "bug")
	h.run("add", "Write docs", "-c", "documentation")

	_, out := h.run("ls", "-c", "bug")
	if !strings.Contains(out, " 2. [ ] ") || strings.Contains(out, "Write docs") {
		t.Errorf("filtered list should show only item 2:\n%s", out)
	}
	_, out = h.run("ls", "-q", "nothing-matches")
	if !strings.Contains(out, "No tasks match your current filters.") {
		t.Errorf("expected empty filter message:\n%s", out)
	}
}

func TestDoneByIndexAndRemoveByPrefix(t *testing.T) {
	h := newHarness()
	h.run("add", "one")
	h.run("add", "two")

	if code, _ := h.run("done", "2"); code != 0 {
		t.Fatalf("done: exit %d", code)
	}
	items := h.tasks(t)
	if items[1].Title != "one" || !items[1].Done() || items[0].Done() {
		t.Fatalf("wrong item toggled: %+v", items)
	}

	if code, out := h.run("rm", items[1].ID[:8]); code != 0 {
		t.Fatalf("rm: exit %d: %s", code, out)
	}
	items = h.tasks(t)
	if len(items) != 1 || items[0].Title != "two" {
		t.Errorf("wrong item removed: %+v", items)
	}
}

func TestEdit(t *testing.T) {
	h := newHarness()
	h.run("add", "Fix login", "-c", "bug", "-a", "dana")
	id := h.tasks(t)[0].ID

	if code, out := h.run("edit", "1", "--title", "Fix logout", "-c", "refactor", "--unassign"); code != 0 {
		t.Fatalf("edit: exit %d: %s", code, out)
	}
	got := h.tasks(t)[0]
	if got.ID != id || got.Title != "Fix logout" || got.Category != model.TaskRefactor || got.AssignedTo != nil {
		t.Errorf("unexpected edit result %+v", got)
	}

	if code, _ := h.run("edit", "1"); code != 2 {
		t.Errorf("edit with nothing to change: expected exit 2, got %d", code)
	}
	if code, _ := h.run("edit", "1", "--title", " "); code != 2 {
		t.Errorf("blank title: expected exit 2, got %d", code)
	}
}

func TestUsageErrors(t *testing.T) {
	h := newHarness()
	h.run("add", "one")

	tests := []struct {
		name string
		args []string
	}{
		{"missing title", []string{"add"}},
		{"index out of range", []string{"done", "5"}},
		{"unknown id", []string{"rm", "zzzz"}},
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"ls", "--bogus"}},
		{"unknown category", []string{"add", "x", "-c", "combat"}},
		{"unknown kind", []string{"--kind", "chore", "ls"}},
		{"unknown status", []string{"ls", "-s", "later"}},
		{"unknown color mode", []string{"--color", "rainbow", "ls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, out := h.run(tt.args...); code != 2 {
				t.Errorf("expected exit 2, got %d: %s", code, out)
			}
		})
	}
	if n := len(h.tasks(t)); n != 1 {
		t.Errorf("usage errors must not change the list, have %d items", n)
	}
}

func TestColorFlag(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	h := newHarness()
	h.run("add", "one")

	tests := []struct {
		name    string
		noColor string
		args    []string
		escapes bool
	}{
		{"always", "", []string{"--color", "always"}, true},
		{"never", "", []string{"--color", "never"}, false},
		{"NO_COLOR", "1", nil, false},
		{"flag beats NO_COLOR", "1", []string{"--color", "always"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			argv := append([]string{"--theme", "classic"}, tt.args...)
			code, out := h.run(append(argv, "ls")...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, out)
			}
			if got := strings.Contains(out, "\033["); got != tt.escapes {
				t.Errorf("escape codes present = %v, want %v:\n%q", got, tt.escapes, out)
			}
		})
	}
}

func TestQuestKindUsesQuestKey(t *testing.T) {
	h := newHarness()
	if code, out := h.run("--kind", "quest", "add", "Slay the dragon", "-c", "combat"); code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}
	if _, ok := h.backend.Raw(config.DefaultTasksKey); ok {
		t.Error("tasks key should be untouched")
	}
	raw, _ := h.backend.Raw(config.DefaultQuestsKey)
	if !strings.Contains(raw, `"category":"combat"`) {
		t.Errorf("unexpected quest blob %s", raw)
	}
}

func TestStats(t *testing.T) {
	h := newHarness()
	_, out := h.run("stats")
	if !strings.Contains(out, "N/A") || !strings.Contains(out, "No tasks recorded yet.") {
		t.Errorf("empty stats:\n%s", out)
	}

	h.run("add", "a", "-c", "bug")
	h.run("add", "b", "-c", "bug")
	h.run("add", "c", "-c", "chore")
	h.run("done", "3")
	_, out = h.run("stats")
	for _, want := range []string{"33%  (1 of 3)", "Category focus:    bug"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate(t *testing.T) {
	h := newHarness()
	if code, _ := h.run("generate", "rate", "limit"); code != 1 {
		t.Errorf("unconfigured generator: expected exit 1, got %d", code)
	}

	h.gen = generate.Func(func(_ context.Context, prompt string) (generate.Suggestion, error) {
		return generate.Suggestion{Title: "Rate limit " + prompt, Description: "Use a token bucket."}, nil
	})
	code, out := h.run("generate", "login", "--add", "-c", "feature")
	if code != 0 {
		t.Fatalf("generate: exit %d: %s", code, out)
	}
	if !strings.Contains(out, "Use a token bucket.") {
		t.Errorf("suggestion not printed:\n%s", out)
	}
	items := h.tasks(t)
	if len(items) != 1 || items[0].Title != "Rate limit login" || items[0].Category != model.TaskFeature {
		t.Errorf("generated task not added: %+v", items)
	}

	h.gen = generate.Func(func(context.Context, string) (generate.Suggestion, error) {
		return generate.Suggestion{}, errors.New("boom")
	})
	if code, _ := h.run("generate", "anything", "--add"); code != 1 {
		t.Errorf("failing generator: expected exit 1, got %d", code)
	}
	if len(h.tasks(t)) != 1 {
		t.Error("failed generation must not add items")
	}
}

func TestExportImport(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			src := newHarness()
			src.run("add", "one", "-c", "bug", "-a", "dana")
			src.run("add", "two")
			src.run("done", "2")

			code, out := src.run("export", "--format", format)
			if code != 0 {
				t.Fatalf("export: exit %d: %s", code, out)
			}
			path := filepath.Join(t.TempDir(), "tasks."+format)
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				t.Fatal(err)
			}

			dst := newHarness()
			if code, out := dst.run("import", path); code != 0 {
				t.Fatalf("import: exit %d: %s", code, out)
			}
			want, got := src.tasks(t), dst.tasks(t)
			if len(got) != len(want) {
				t.Fatalf("want %d items, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i].Title != want[i].Title || got[i].Status != want[i].Status ||
					got[i].Category != want[i].Category || got[i].Assignee() != want[i].Assignee() {
					t.Errorf("item %d: want %+v, got %+v", i, want[i], got[i])
				}
			}
		})
	}
}

func TestExportEmptyIsArray(t *testing.T) {
	h := newHarness()
	_, out := h.run("export")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected [], got %q", out)
	}
}
