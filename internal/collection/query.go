package collection

import (
	"math"
	"strings"

	"github.com/idilsaglam/questlog/internal/model"
)

// Filter narrows a list for display. Zero values mean "all".
type Filter[C model.Category] struct {
	Search   string
	Category C
	Status   model.Status
}

// Apply keeps the items matching f, preserving order. Search is a
// case-insensitive substring match on title or description, taken as typed.
func Apply[C model.Category](items []model.Item[C], f Filter[C]) []model.Item[C] {
	term := strings.ToLower(f.Search)
	out := make([]model.Item[C], 0, len(items))
	for _, it := range items {
		if term != "" &&
			!strings.Contains(strings.ToLower(it.Title), term) &&
			!strings.Contains(strings.ToLower(it.Description), term) {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Partition splits items into active and completed, each in list order.
func Partition[C model.Category](items []model.Item[C]) (active, completed []model.Item[C]) {
	for _, it := range items {
		if it.Done() {
			completed = append(completed, it)
		} else {
			active = append(active, it)
		}
	}
	return active, completed
}

// NoCategory is reported as TopCategory for an empty list.
const NoCategory = "N/A"

// Stats is the dashboard summary of a collection.
type Stats struct {
	Active      int    `json:"active"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
	Percent     int    `json:"percent"`
	TopCategory string `json:"topCategory"`
}

// Summarize counts items by status and finds the most used category.
// Ties go to the category that appears first in the list.
func Summarize[C model.Category](items []model.Item[C]) Stats {
	st := Stats{Total: len(items), TopCategory: NoCategory}
	counts := make(map[C]int)
	var order []C
	for _, it := range items {
		if it.Done() {
			st.Completed++
		} else {
			st.Active++
		}
		if _, seen := counts[it.Category]; !seen {
			order = append(order, it.Category)
		}
		counts[it.Category]++
	}
	if st.Total > 0 {
		st.Percent = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	best := 0
	for _, c := range order {
		if counts[c] > best {
			best = counts[c]
			st.TopCategory = string(c)
		}
	}
	return st
}
