package version

import "strings"

const tagPrefix = "v"

// TagName is the source-control tag a concrete release is published under (e.g. "v0.3.4").
func TagName(v Version) string {
	return tagPrefix + v.String()
}

// TrimTagPrefix strips a single leading "v" from a tag name.
func TrimTagPrefix(tag string) string {
	return strings.TrimPrefix(tag, tagPrefix)
}

// ParseTag parses a tag name such as "v0.3.4" into a Version.
func ParseTag(tag string) (Version, error) {
	return Parse(TrimTagPrefix(tag))
}
