// Package slug derives the URL identifiers used to address categories.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	separator = "-"
	fallback  = "category"

	// MaxProbes bounds the number of suffixes tried before giving up.
	MaxProbes = 10000
)

var ErrExhausted = errors.New("no free slug found")

// ExistsFunc reports whether slug is already assigned.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Slugify lowercases name and collapses every run of characters that are not
// ASCII letters or digits into a single separator. Leading and trailing
// separators are dropped. A name without any usable character yields
// "category".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pending := false
	for _, r := range strings.ToLower(name) {
		if isAlphanumeric(r) {
			if pending && b.Len() > 0 {
				b.WriteString(separator)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	if b.Len() == 0 {
		return fallback
	}

	return b.String()
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Assign returns the first free identifier for name: the slugified base,
// then base-1, base-2 and so on.
func Assign(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	base := Slugify(name)

	candidate := base
	for i := 1; i <= MaxProbes; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}

		if !taken {
			return candidate, nil
		}

		candidate = base + separator + strconv.Itoa(i)
	}

	return "", fmt.Errorf("%w for %q after %d attempts", ErrExhausted, name, MaxProbes)
}
