package locfile

import (
	"path/filepath"
	"sort"
)

// LoadOrder returns file names in the order the host engine reads them:
// reverse lexicographic by base name. Names read later override names
// read earlier, so the lexicographically smallest name loads last and its
// keys win. That is why override files carry "000"-style prefixes.
//
// The input is not modified. Full paths are accepted; ordering uses the
// base name, matching the engine's flat localisation directory.
func LoadOrder(names []string) []string {
	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.Slice(ordered, func(i, j int) bool {
		return filepath.Base(ordered[i]) > filepath.Base(ordered[j])
	})
	return ordered
}
