package pairs

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/lanterndata/extupdate/extupdate/version"
	"github.com/lanterndata/extupdate/internal/log"
)

const (
	scriptSuffix    = ".sql"
	scriptSeparator = "--"
)

// Pair is one upgrade path: a released version and the version its migration script upgrades to.
type Pair struct {
	From version.Version
	To   version.Version
}

// NewPair parses an explicitly requested upgrade path.
func NewPair(from, to string) (Pair, error) {
	fromVersion, err := version.Parse(from)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid upgrade source: %w", err)
	}
	if fromVersion.IsLatest() {
		return Pair{}, fmt.Errorf("upgrade source must be a released version, got %q", from)
	}
	toVersion, err := version.Parse(to)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid upgrade target: %w", err)
	}
	return Pair{From: fromVersion, To: toVersion}, nil
}

// ParseScriptName turns a migration script name of the form "<from>--<to>.sql" into a Pair.
func ParseScriptName(name string) (Pair, error) {
	if !strings.HasSuffix(name, scriptSuffix) {
		return Pair{}, fmt.Errorf("migration script %q does not end with %q", name, scriptSuffix)
	}
	fields := strings.Split(strings.TrimSuffix(name, scriptSuffix), scriptSeparator)
	if len(fields) != 2 {
		return Pair{}, fmt.Errorf("migration script %q is not named <from>%s<to>%s", name, scriptSeparator, scriptSuffix)
	}
	p, err := NewPair(fields[0], fields[1])
	if err != nil {
		return Pair{}, fmt.Errorf("migration script %q: %w", name, err)
	}
	return p, nil
}

// Discover lists the migration scripts in dir and returns one Pair per script, in file name order.
// Directories and files without the .sql suffix are ignored.
func Discover(fs afero.Fs, dir string) ([]Pair, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("migration scripts directory %q does not exist: %w", dir, err)
		}
		return nil, fmt.Errorf("unable to list migration scripts in %q: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var ret []Pair
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), scriptSuffix) {
			log.Debugf("ignoring non-migration entry: %s", path.Join(dir, entry.Name()))
			continue
		}
		p, err := ParseScriptName(entry.Name())
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func (p Pair) String() string {
	return p.From.String() + " -> " + p.To.String()
}
