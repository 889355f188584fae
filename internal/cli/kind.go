package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/generate"
	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/tui"
	"github.com/idilsaglam/questlog/internal/ui"
)

type listOptions struct {
	group    bool
	search   string
	category string
	status   string
}

type itemOptions struct {
	title       string
	description string
	category    string
	assignee    string
	unassign    bool
	set         func(name string) bool // reports whether a flag was given
}

// view runs subcommands against one collection. kindView implements it for
// each category type so commands stay free of type parameters.
type view interface {
	Name() string
	List(w io.Writer, opt listOptions) error
	Show(w io.Writer, ref string) error
	Add(w io.Writer, opt itemOptions) error
	Edit(w io.Writer, ref string, opt itemOptions) error
	Toggle(w io.Writer, ref string) error
	Remove(w io.Writer, ref string) error
	Stats(w io.Writer) error
	Generate(ctx context.Context, w io.Writer, prompt string, add bool, category string) error
	Interactive() error
	Export(w io.Writer, format string) error
	Import(w io.Writer, path string) error
}

type kindView[C model.Category] struct {
	kind       model.Kind
	name       string // plural display name
	noun       string
	store      *collection.Store[C]
	categories []C
	fallback   C
	gen        generate.Generator
}

func (v *kindView[C]) Name() string { return v.name }

func (v *kindView[C]) parseCategory(s string) (C, error) {
	var zero C
	s = strings.TrimSpace(s)
	if s == "" {
		return zero, nil
	}
	for _, c := range v.categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	names := make([]string, len(v.categories))
	for i, c := range v.categories {
		names[i] = string(c)
	}
	return zero, usagef("unknown %s category %q (one of: %s)", v.noun, s, strings.Join(names, ", "))
}

func parseStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "active", "open":
		return model.StatusActive, nil
	case "completed", "done", "closed":
		return model.StatusCompleted, nil
	}
	return "", usagef("unknown status %q (active or completed)", s)
}

func (v *kindView[C]) List(w io.Writer, opt listOptions) error {
	cat, err := v.parseCategory(opt.category)
	if err != nil {
		return err
	}
	status, err := parseStatus(opt.status)
	if err != nil {
		return err
	}
	all := v.store.Items()
	filter := collection.Filter[C]{Search: opt.search, Category: cat, Status: status}
	filtered := filterKeepingNumbers(all, filter)

	st := collection.Summarize(all)
	t := ui.Current()
	lines := []string{
		ui.Header(v.name, st),
		ui.C(t.Muted, ui.ProgressBar(st.Completed, st.Total, 28)),
		"",
	}
	switch {
	case len(all) > 0 && len(filtered.items) == 0:
		lines = append(lines, ui.C(t.Muted, fmt.Sprintf("No %s match your current filters.", v.name)))
	case opt.group:
		lines = append(lines, ui.GroupLines(filtered.items, filtered.nums)...)
	default:
		lines = append(lines, filtered.lines()...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, fmt.Sprintf("Tip: questlog --kind %s add \"<title>\"", v.kind)))
	ui.Panel(w, lines)
	return nil
}

// numbered pairs filtered items with their position in the full list, so
// the numbers shown stay valid for done/rm/edit.
type numbered[C model.Category] struct {
	items []model.Item[C]
	nums  []int
}

func filterKeepingNumbers[C model.Category](all []model.Item[C], f collection.Filter[C]) numbered[C] {
	keep := collection.Apply(all, f)
	pos := make(map[string]int, len(all))
	for i, it := range all {
		pos[it.ID] = i + 1
	}
	out := numbered[C]{items: keep}
	for _, it := range keep {
		out.nums = append(out.nums, pos[it.ID])
	}
	return out
}

func (n numbered[C]) lines() []string {
	if len(n.items) == 0 {
		return ui.FlatLines(n.items)
	}
	out := make([]string, 0, len(n.items))
	for i, it := range n.items {
		out = append(out, ui.ItemLine(n.nums[i], it))
	}
	return out
}

func (v *kindView[C]) Show(w io.Writer, ref string) error {
	it, err := resolveRef(v.store.Items(), ref)
	if err != nil {
		return err
	}
	ui.Panel(w, ui.DetailLines(it))
	return nil
}

func (v *kindView[C]) Add(w io.Writer, opt itemOptions) error {
	cat, err := v.parseCategory(opt.category)
	if err != nil {
		return err
	}
	f := model.Fields[C]{Title: opt.title, Description: opt.description, Category: cat}
	if opt.assignee != "" {
		f.AssignedTo = &opt.assignee
	}
	f = f.Normalize(v.fallback)
	if err := f.Validate(); err != nil {
		return usagef("add: %v", err)
	}
	it := v.store.Add(f)
	ui.OK(w, fmt.Sprintf("added %s %s", v.noun, ui.ShortID(it.ID)))
	return nil
}

func (v *kindView[C]) Edit(w io.Writer, ref string, opt itemOptions) error {
	it, err := resolveRef(v.store.Items(), ref)
	if err != nil {
		return err
	}
	var p model.Patch[C]
	if opt.set("title") {
		p.Title = &opt.title
	}
	if opt.set("description") {
		p.Description = &opt.description
	}
	if opt.set("category") {
		cat, err := v.parseCategory(opt.category)
		if err != nil {
			return err
		}
		if cat == "" {
			cat = v.fallback
		}
		p.Category = &cat
	}
	if opt.set("assign") && strings.TrimSpace(opt.assignee) != "" {
		p.AssignedTo = &opt.assignee
	}
	if opt.unassign {
		p.ClearAssignee = true
	}
	if p.Empty() {
		return usagef("edit: nothing to change")
	}
	if err := p.Validate(); err != nil {
		return usagef("edit: %v", err)
	}
	v.store.Update(it.ID, p)
	ui.OK(w, "updated")
	return nil
}

func (v *kindView[C]) Toggle(w io.Writer, ref string) error {
	it, err := resolveRef(v.store.Items(), ref)
	if err != nil {
		return err
	}
	v.store.ToggleStatus(it.ID)
	if it.Done() {
		ui.OK(w, "reopened")
	} else {
		ui.OK(w, "completed")
	}
	return nil
}

func (v *kindView[C]) Remove(w io.Writer, ref string) error {
	it, err := resolveRef(v.store.Items(), ref)
	if err != nil {
		return err
	}
	v.store.Delete(it.ID)
	ui.OK(w, "removed")
	return nil
}

func (v *kindView[C]) Stats(w io.Writer) error {
	st := collection.Summarize(v.store.Items())
	t := ui.Current()
	lines := []string{
		ui.C(t.Title, strings.ToUpper(v.name[:1])+v.name[1:]+" dashboard"),
		"",
		fmt.Sprintf("%-18s %d", "Open:", st.Active),
		fmt.Sprintf("%-18s %d", "Closed:", st.Completed),
		fmt.Sprintf("%-18s %d%%  (%d of %d)", "Overall progress:", st.Percent, st.Completed, st.Total),
		ui.C(t.Muted, ui.ProgressBar(st.Completed, st.Total, 28)),
		"",
		fmt.Sprintf("%-18s %s", "Category focus:", st.TopCategory),
	}
	if st.Total == 0 {
		lines = append(lines, "", ui.C(t.Muted, fmt.Sprintf("No %s recorded yet.", v.name)))
	}
	ui.Panel(w, lines)
	return nil
}

func (v *kindView[C]) Generate(ctx context.Context, w io.Writer, prompt string, add bool, category string) error {
	cat, err := v.parseCategory(category)
	if err != nil {
		return err
	}
	f, err := generate.Fill(ctx, v.gen, prompt, model.Fields[C]{Category: cat})
	switch {
	case err == generate.ErrEmptyPrompt:
		return usagef("generate: %v", err)
	case err == generate.ErrNotConfigured:
		return fmt.Errorf("%w (set OPENAI_API_KEY or ai.api_key)", err)
	case err != nil:
		return fmt.Errorf("could not generate %s, try again or enter it manually: %w", v.noun, err)
	}

	t := ui.Current()
	ui.Panel(w, []string{ui.C(t.Title, f.Title), "", f.Description})
	if add {
		f = f.Normalize(v.fallback)
		if err := f.Validate(); err != nil {
			return fmt.Errorf("generated %s is not valid: %w", v.noun, err)
		}
		it := v.store.Add(f)
		ui.OK(w, fmt.Sprintf("added %s %s", v.noun, ui.ShortID(it.ID)))
	}
	return nil
}

func (v *kindView[C]) Interactive() error {
	return tui.Run(v.store, strings.ToUpper(v.name[:1])+v.name[1:], v.fallback)
}
