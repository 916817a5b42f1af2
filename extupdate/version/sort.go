package version

import "sort"

// Versions implements sort.Interface in ascending order.
type Versions []Version

func (vs Versions) Len() int           { return len(vs) }
func (vs Versions) Less(i, j int) bool { return vs[i].LessThan(vs[j]) }
func (vs Versions) Swap(i, j int)      { vs[i], vs[j] = vs[j], vs[i] }

// Strings renders every version.
func (vs Versions) Strings() []string {
	ret := make([]string, len(vs))
	for i, v := range vs {
		ret[i] = v.String()
	}
	return ret
}

// Sort orders the given versions in place, ascending. The sort is stable so that versions that
// compare equal keep their input order.
func Sort(vs []Version) {
	sort.Stable(Versions(vs))
}

// Reverse returns a new slice with the elements of vs in reverse order.
func Reverse(vs []Version) []Version {
	ret := make([]Version, len(vs))
	for i, v := range vs {
		ret[len(vs)-1-i] = v
	}
	return ret
}

// Max returns the greatest version, or false when vs is empty.
func Max(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	ret := vs[0]
	for _, v := range vs[1:] {
		if v.GreaterThan(ret) {
			ret = v
		}
	}
	return ret, true
}
