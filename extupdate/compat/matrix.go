package compat

import (
	"fmt"
	"sort"

	"github.com/lanterndata/extupdate/extupdate/version"
)

// DefaultTable lists, per platform (postgres major) version, the extension releases that cannot be
// built or installed on that platform.
var DefaultTable = map[string][]string{
	"16": {"0.0.4"},
	"17": {"0.3.0", "0.3.1", "0.3.2", "0.3.3", "0.3.4", "0.4.0", "0.4.1"},
}

// Matrix maps a platform version to the set of extension versions excluded on it. A Matrix is
// populated once and is read-only afterwards.
type Matrix struct {
	excluded map[string][]version.Version
}

// Default builds the matrix from DefaultTable.
func Default() *Matrix {
	m, err := New(DefaultTable)
	if err != nil {
		panic(err)
	}
	return m
}

// New builds a matrix from the given tables. Later tables add to the exclusions of earlier ones for
// the same platform key.
func New(tables ...map[string][]string) (*Matrix, error) {
	m := &Matrix{
		excluded: make(map[string][]version.Version),
	}
	for _, table := range tables {
		for platform, tokens := range table {
			for _, token := range tokens {
				v, err := version.Parse(token)
				if err != nil {
					return nil, fmt.Errorf("invalid excluded version for platform %q: %w", platform, err)
				}
				m.excluded[platform] = append(m.excluded[platform], v)
			}
		}
	}
	return m, nil
}

// IsIncompatible reports whether v is excluded on the given platform version. An empty platform
// version (not provided) or an unknown one never excludes anything.
func (m *Matrix) IsIncompatible(platformVersion string, v version.Version) bool {
	if m == nil || platformVersion == "" {
		return false
	}
	for _, excluded := range m.excluded[platformVersion] {
		if excluded.Equal(v) {
			return true
		}
	}
	return false
}

// Platforms returns the known platform keys, sorted.
func (m *Matrix) Platforms() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.excluded))
	for k := range m.excluded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Excluded returns the versions excluded on the given platform, in ascending order.
func (m *Matrix) Excluded(platformVersion string) []version.Version {
	if m == nil {
		return nil
	}
	ret := make([]version.Version, len(m.excluded[platformVersion]))
	copy(ret, m.excluded[platformVersion])
	version.Sort(ret)
	return ret
}
