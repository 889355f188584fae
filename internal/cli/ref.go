package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/idilsaglam/questlog/internal/model"
)

// usageError marks mistakes on the command line. They exit with status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func isUsage(err error) bool {
	var u *usageError
	return errors.As(err, &u)
}

// resolveRef finds the item a user referred to: a 1-based list number, a
// full id, or an unambiguous id prefix.
func resolveRef[C model.Category](items []model.Item[C], ref string) (model.Item[C], error) {
	var zero model.Item[C]
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, usagef("missing item reference")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return zero, usagef("index out of range: have %d, got %d (run `questlog ls` to see valid indexes)", len(items), n)
		}
		return items[n-1], nil
	}

	var match []model.Item[C]
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
		if strings.HasPrefix(it.ID, ref) {
			match = append(match, it)
		}
	}
	switch len(match) {
	case 0:
		return zero, usagef("no item matches %q", ref)
	case 1:
		return match[0], nil
	}
	return zero, usagef("%q is ambiguous (%d items match)", ref, len(match))
}
