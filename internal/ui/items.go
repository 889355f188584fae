package ui

import (
	"fmt"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/model"
)

const maxTitle = 80

var glyphs = map[string]string{
	// tasks
	"bug": "🐞", "feature": "💡", "chore": "⚙", "documentation": "📄", "refactor": "🔧", "general": "📋",
	// quests
	"combat": "⚔", "healing": "✚", "exploration": "🧭", "crafting": "⚒", "diplomacy": "🤝", "default": "📜",
}

// Glyph is the symbol shown for a category. Plain themes get the label.
func Glyph(category string) string {
	if g, ok := glyphs[category]; ok && !current.Plain {
		return g
	}
	return "[" + category + "]"
}

// ShortID is the id prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

// ItemLine renders one numbered listing row.
func ItemLine[K model.Category](n int, it model.Item[K]) string {
	t := Current()
	box, color := t.BoxUnchecked, t.Muted
	if it.Done() {
		box, color = t.BoxChecked, t.Success
	}
	line := fmt.Sprintf("%s %s %s %s %s",
		Dim(fmt.Sprintf("%2d.", n)),
		C(color, box),
		C(t.Muted, ShortID(it.ID)),
		Glyph(string(it.Category)),
		truncate(it.Title, maxTitle),
	)
	if a := it.Assignee(); a != "" {
		line += " " + C(t.Accent, "@"+a)
	}
	return line
}

// Header is the counts line shown above a listing.
func Header(title string, st collection.Stats) string {
	t := Current()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, title),
		C(t.Success, t.SymDone), st.Completed,
		C(t.Pending, t.SymUnchecked), st.Active,
		C(t.Accent, "Total"), st.Total,
	)
}

// FlatLines numbers items from 1 in list order.
func FlatLines[K model.Category](items []model.Item[K]) []string {
	if len(items) == 0 {
		return []string{C(Current().Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, ItemLine(i+1, it))
	}
	return out
}

// GroupLines shows active items, then completed ones. nums holds each
// item's position in the full list so the numbers work with done/rm; nil
// numbers items in slice order.
func GroupLines[K model.Category](items []model.Item[K], nums []int) []string {
	t := Current()
	num := make(map[string]int, len(items))
	for i, it := range items {
		num[it.ID] = i + 1
		if nums != nil {
			num[it.ID] = nums[i]
		}
	}
	section := func(title string, group []model.Item[K]) []string {
		lines := []string{C(t.Accent, title)}
		if len(group) == 0 {
			return append(lines, C(t.Muted, "(none)"))
		}
		for _, it := range group {
			lines = append(lines, ItemLine(num[it.ID], it))
		}
		return lines
	}

	active, done := collection.Partition(items)
	lines := section("Active", active)
	lines = append(lines, "")
	return append(lines, section("Completed", done)...)
}

// DetailLines shows every field of an item.
func DetailLines[K model.Category](it model.Item[K]) []string {
	t := Current()
	lines := []string{
		C(t.Title, it.Title),
		C(t.Muted, "id:       ") + it.ID,
		C(t.Muted, "status:   ") + string(it.Status),
		C(t.Muted, "category: ") + string(it.Category),
	}
	if a := it.Assignee(); a != "" {
		lines = append(lines, C(t.Muted, "assigned: ")+a)
	}
	if it.Description != "" {
		lines = append(lines, "", it.Description)
	}
	return lines
}
