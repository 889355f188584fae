package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/model"
)

func useMono(t *testing.T) {
	t.Helper()
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 4, 2, "█░░░░  25%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d,%d,%d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestPanelPadsToWidestLine(t *testing.T) {
	useMono(t)
	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "abcd"})
	want := "+------+\n| ab   |\n| abcd |\n+------+\n"
	if buf.String() != want {
		t.Errorf("want\n%s\ngot\n%s", want, buf.String())
	}
}

func TestPanelCountsWideGlyphs(t *testing.T) {
	useMono(t)
	var buf bytes.Buffer
	Panel(&buf, []string{"🐞", "abc"})
	want := "+-----+\n| 🐞  |\n| abc |\n+-----+\n"
	if buf.String() != want {
		t.Errorf("want\n%s\ngot\n%s", want, buf.String())
	}
}

func TestPanelIgnoresColorCodes(t *testing.T) {
	SetTheme("classic")
	SetColorMode(ColorAlways)
	t.Cleanup(func() { SetColorMode(ColorAuto) })
	if got := visibleWidth(C(fgRed, "abc")); got != 3 {
		t.Errorf("visibleWidth = %d, want 3", got)
	}
}

func TestColorMode(t *testing.T) {
	t.Cleanup(func() {
		SetTheme("classic")
		SetColorMode(ColorAuto)
	})
	SetTheme("classic")

	SetColorMode(ColorAlways)
	if got := C(fgRed, "x"); got != fgRed+"x"+reset {
		t.Errorf("always: got %q", got)
	}
	SetColorMode(ColorNever)
	if got := C(fgRed, "x"); got != "x" {
		t.Errorf("never: got %q", got)
	}
	SetTheme("mono")
	SetColorMode(ColorAlways)
	if got := C(fgRed, "x"); got != "x" {
		t.Errorf("mono theme should stay plain, got %q", got)
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
		ok   bool
	}{
		{"", ColorAuto, true},
		{"AUTO", ColorAuto, true},
		{"always", ColorAlways, true},
		{" never ", ColorNever, true},
		{"rainbow", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseColorMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseColorMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestItemLineMono(t *testing.T) {
	useMono(t)
	it := model.Task{ID: "0123456789", Title: "Fix bug", Status: model.StatusCompleted, Category: model.TaskBug, AssignedTo: model.Ptr("jo")}
	got := ItemLine(3, it)
	want := " 3. [x] 01234567 [bug] Fix bug @jo"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestGroupLinesKeepListNumbers(t *testing.T) {
	useMono(t)
	items := []model.Task{
		{ID: "a", Title: "one", Status: model.StatusCompleted, Category: model.TaskBug},
		{ID: "b", Title: "two", Status: model.StatusActive, Category: model.TaskBug},
	}
	out := strings.Join(GroupLines(items, nil), "\n")
	if !strings.Contains(out, " 2. [ ] b [bug] two") || !strings.Contains(out, " 1. [x] a [bug] one") {
		t.Errorf("unexpected grouping:\n%s", out)
	}
	if strings.Index(out, "two") > strings.Index(out, "one") {
		t.Errorf("active items should come first:\n%s", out)
	}
}

func TestGroupLinesExplicitNumbers(t *testing.T) {
	useMono(t)
	items := []model.Task{{ID: "c", Title: "three", Status: model.StatusActive, Category: model.TaskChore}}
	out := strings.Join(GroupLines(items, []int{3}), "\n")
	if !strings.Contains(out, " 3. [ ] c [chore] three") {
		t.Errorf("expected list number 3:\n%s", out)
	}
}

func TestHeader(t *testing.T) {
	useMono(t)
	got := Header("Tasks", collection.Stats{Active: 2, Completed: 1, Total: 3})
	if got != "Tasks  x 1  - 2  Total 3" {
		t.Errorf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := truncate(long, 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("got %q", got)
	}
}
