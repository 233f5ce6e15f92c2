// Package deppkg resolves an AL project's app.json dependencies against the
// .alpackages folder and extracts the symbol tables of each matching .app
// file into ExternalObject/ExternalMethod records the indexer can register
// as external definitions.
package deppkg

import "strconv"

// ParseVersion splits a dotted version string into its numeric components,
// silently dropping any non-numeric segment. "26.0.30643.32100" yields
// [26, 0, 30643, 32100].
func ParseVersion(version string) []uint64 {
	var parts []uint64
	start := 0
	for i := 0; i <= len(version); i++ {
		if i == len(version) || version[i] == '.' {
			if i > start {
				if n, err := strconv.ParseUint(version[start:i], 10, 64); err == nil {
					parts = append(parts, n)
				}
			}
			start = i + 1
		}
	}
	return parts
}

func versionComponent(parts []uint64, i int) uint64 {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// IsVersionCompatible reports whether actual satisfies required, comparing
// only the major and minor components: actual is compatible if its
// major.minor is greater than or equal to required's.
func IsVersionCompatible(required, actual string) bool {
	req := ParseVersion(required)
	act := ParseVersion(actual)

	n := 2
	if len(req) < n {
		n = len(req)
	}
	for i := 0; i < n; i++ {
		r := versionComponent(req, i)
		a := versionComponent(act, i)
		if a > r {
			return true
		}
		if a < r {
			return false
		}
	}
	return true
}

// CompareVersions orders a and b so that the higher version sorts first:
// negative if a > b, positive if a < b, zero if equal component-wise
// (missing trailing components are treated as zero).
func CompareVersions(a, b string) int {
	aParts := ParseVersion(a)
	bParts := ParseVersion(b)

	max := len(aParts)
	if len(bParts) > max {
		max = len(bParts)
	}
	for i := 0; i < max; i++ {
		av := versionComponent(aParts, i)
		bv := versionComponent(bParts, i)
		switch {
		case bv < av:
			return -1
		case bv > av:
			return 1
		}
	}
	return 0
}
