package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/ui"
)

func (v *kindView[C]) Export(w io.Writer, format string) error {
	items := v.store.Items()
	if items == nil {
		items = []model.Item[C]{}
	}
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}
	return usagef("unknown export format %q (json or yaml)", format)
}

// Import adds every item in a JSON or YAML export. Items get fresh ids;
// completed ones stay completed. Entries that fail validation are skipped.
func (v *kindView[C]) Import(w io.Writer, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	var items []model.Item[C]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &items)
	default:
		err = json.Unmarshal(b, &items)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	added, skipped := 0, 0
	// exports are newest first, add oldest first to keep that order
	for i := len(items) - 1; i >= 0; i-- {
		f := model.FieldsOf(items[i]).Normalize(v.fallback)
		if err := f.Validate(); err != nil {
			skipped++
			continue
		}
		it := v.store.Add(f)
		if items[i].Done() {
			v.store.ToggleStatus(it.ID)
		}
		added++
	}
	msg := fmt.Sprintf("imported %d %s", added, v.name)
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d invalid", skipped)
	}
	ui.OK(w, msg)
	return nil
}
