package version

import (
	"strconv"
	"strings"
)

// LatestLiteral is the placeholder used in migration script names for the next, not yet tagged, release.
const LatestLiteral = "latest"

// Version is either the "latest" sentinel or a concrete dotted-integer release (e.g. "0.3.4").
// The zero value is not a valid version; use Parse, MustParse or Latest.
type Version struct {
	latest     bool
	components []int
}

// Latest returns the sentinel version, which orders after every concrete version.
func Latest() Version {
	return Version{latest: true}
}

// Parse converts a version token into a Version. The token is either LatestLiteral or a
// dot-separated list of non-negative integers.
func Parse(token string) (Version, error) {
	if token == LatestLiteral {
		return Latest(), nil
	}

	segments := strings.Split(token, ".")
	components := make([]int, 0, len(segments))
	for idx, segment := range segments {
		if !isNumeric(segment) {
			return Version{}, newParseError(token, idx, segment)
		}
		n, err := strconv.Atoi(segment)
		if err != nil {
			return Version{}, newParseError(token, idx, segment)
		}
		components = append(components, n)
	}

	return Version{components: components}, nil
}

// MustParse is like Parse but panics on an invalid token. It is intended for static tables.
func MustParse(token string) Version {
	v, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return v
}

func isNumeric(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (v Version) IsLatest() bool {
	return v.latest
}

// Components returns a copy of the numeric components (nil for the sentinel).
func (v Version) Components() []int {
	if v.latest {
		return nil
	}
	ret := make([]int, len(v.components))
	copy(ret, v.components)
	return ret
}

func (v Version) String() string {
	if v.latest {
		return LatestLiteral
	}
	parts := make([]string, len(v.components))
	for i, c := range v.components {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// Compare returns -1, 0, or 1 if this version is smaller, equal, or larger than the other version.
// Only the indices present in the receiver are compared: "1.2" is equal to "1.2.9". When the receiver
// has more components than other and the shared prefix matches, the receiver is larger.
func (v Version) Compare(other Version) int {
	switch {
	case v.latest && other.latest:
		return 0
	case v.latest:
		return 1
	case other.latest:
		return -1
	}

	for i, c := range v.components {
		if i >= len(other.components) {
			return 1
		}
		if c < other.components[i] {
			return -1
		}
		if c > other.components[i] {
			return 1
		}
	}
	return 0
}

// Compare is the function form of Version.Compare.
func Compare(a, b Version) int {
	return a.Compare(b)
}

func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}
