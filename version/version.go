// Package version implements OSGi R4 bundle versions and version ranges:
// an ordered (major, minor, micro, qualifier) quadruple, plus the half-open
// and closed interval membership tests used throughout the manifest parser
// and the dependency registry.
package version

import (
	"strconv"
	"strings"

	"github.com/vireo-dev/osgibundle/bundleerr"
)

// Version is an OSGi bundle version: major.minor.micro.qualifier. The zero
// value is Default, the smallest valid version.
//
// The following clause ensures Version stays directly comparable with ==
// (Equal, and the canonical-string writers that compare VersionRange values
// against DefaultRange, rely on it).
var _ = Version{} == Version{}

type Version struct {
	Major, Minor, Micro int
	Qualifier           string

	// infinite marks the Infinite sentinel. It is never set by Parse; it
	// only ever arises from the Infinite package value and from the
	// half-open range constructed for a single parsed version.
	infinite bool
}

// Default is the smallest valid version: 0.0.0.
var Default = Version{}

// Infinite compares strictly greater than every other version, including
// itself. It is never produced by Parse. See VersionRange for why the
// self-greater behavior matters: it keeps a version from ever matching the
// ceiling of a [floor, Infinite) range.
var Infinite = Version{infinite: true}

// Parse parses a dotted OSGi version string. Missing trailing segments
// default to zero (for the numeric positions) or empty (for the
// qualifier). A non-numeric major, minor, or micro segment is a parse
// failure.
func Parse(input string) (Version, error) {
	parts := strings.SplitN(input, ".", 4)

	var v Version
	fields := [3]*int{&v.Major, &v.Minor, &v.Micro}
	for i, field := range fields {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, bundleerr.WrapInvalidBundle(err, "invalid version %q: segment %d is not numeric", input, i+1)
		}
		if n < 0 {
			return Version{}, bundleerr.NewInvalidBundle("invalid version %q: segment %d is negative", input, i+1)
		}
		*field = n
	}
	if len(parts) == 4 {
		v.Qualifier = parts[3]
	}

	return v, nil
}

// MustParse parses the version and panics if the version is invalid. Useful
// in tests and for compile-time-known version literals.
func MustParse(input string) Version {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

// IsInfinite reports whether v is the Infinite sentinel.
func (v Version) IsInfinite() bool {
	return v.infinite
}

// Compare returns an integer comparing two versions: -1 if a < b, 0 if
// a == b, +1 if a > b, ordering lexicographically over
// (major, minor, micro, qualifier) with the qualifier compared by byte
// value.
//
// Infinite is a deliberate exception to normal total-order rules: it
// compares strictly greater than every version, including another
// Infinite. This means Compare(Infinite, Infinite) == 1, not 0 — the
// asymmetry is intentional (see SPEC_FULL.md §9) and is what lets
// VersionRange exclude Infinite from a ceiling-inclusive [_, Infinite]
// range.
func Compare(a, b Version) int {
	if a.infinite || b.infinite {
		if a.infinite {
			return 1
		}
		return -1
	}

	if a.Major != b.Major {
		return sign(a.Major - b.Major)
	}
	if a.Minor != b.Minor {
		return sign(a.Minor - b.Minor)
	}
	if a.Micro != b.Micro {
		return sign(a.Micro - b.Micro)
	}
	return strings.Compare(a.Qualifier, b.Qualifier)
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// LessThan returns true if v is ordered before v2.
func (v Version) LessThan(v2 Version) bool {
	return Compare(v, v2) < 0
}

// GreaterThan returns true if v is ordered after v2.
func (v Version) GreaterThan(v2 Version) bool {
	return Compare(v, v2) > 0
}

// Equal returns true if v and v2 have identical fields. Two Infinite values
// are Equal even though Compare never reports them equal — Equal is
// structural identity, Compare is the ordering relation used by ranges.
func (v Version) Equal(v2 Version) bool {
	return v == v2
}

// Canonical returns the canonical string form: "major.minor.micro",
// trimming trailing zero components, or "major.minor.micro.qualifier" in
// full (never trimmed) when a qualifier is present.
func (v Version) Canonical() string {
	if v.infinite {
		return "infinite"
	}

	if v.Qualifier != "" {
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Micro) + "." + v.Qualifier
	}

	parts := [3]int{v.Major, v.Minor, v.Micro}
	n := 3
	for n > 1 && parts[n-1] == 0 {
		n--
	}

	sb := &strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(parts[i]))
	}
	return sb.String()
}

func (v Version) String() string {
	return v.Canonical()
}
