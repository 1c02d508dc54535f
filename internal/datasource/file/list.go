package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiscoverCSV lists the .csv files directly under dir, in name order, as full
// paths. os.ReadDir already sorts entries by name, so discovery order is
// stable across runs. Dotfiles are skipped; archive extractions tend to leave
// AppleDouble "._x.csv" droppings behind. An empty result is not an error
// here; the caller decides whether no input is fatal.
func DiscoverCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover sources in %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// DiscoverSources wraps the discovered paths as Local sources, preserving
// order.
func DiscoverSources(dir string) ([]*Local, error) {
	paths, err := DiscoverCSV(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*Local, len(paths))
	for i, p := range paths {
		out[i] = NewLocal(p)
	}
	return out, nil
}
