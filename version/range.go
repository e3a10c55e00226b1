package version

import (
	"strings"
	"unicode/utf8"

	"github.com/vireo-dev/osgibundle/bundleerr"
)

// VersionRange is a half-open or closed interval of versions, with
// independent inclusivity flags for the floor and the ceiling.
type VersionRange struct {
	Floor, Ceiling                   Version
	FloorInclusive, CeilingInclusive bool
}

// DefaultRange is [0.0.0, Infinite): every parseable version is a member.
var DefaultRange = VersionRange{
	Floor:            Default,
	Ceiling:          Infinite,
	FloorInclusive:   true,
	CeilingInclusive: false,
}

// Single builds the range matching a single version and everything above
// it: [v, Infinite).
func Single(v Version) VersionRange {
	return VersionRange{
		Floor:            v,
		Ceiling:          Infinite,
		FloorInclusive:   true,
		CeilingInclusive: false,
	}
}

// Contains reports whether v falls within the range, respecting both
// inclusivity flags. Because Compare(Infinite, Infinite) is defined to be
// strictly greater than zero, a ceiling-inclusive range whose ceiling is
// Infinite never contains Infinite itself.
func (r VersionRange) Contains(v Version) bool {
	if r.FloorInclusive {
		if Compare(v, r.Floor) < 0 {
			return false
		}
	} else if Compare(v, r.Floor) <= 0 {
		return false
	}

	if r.CeilingInclusive {
		if Compare(v, r.Ceiling) > 0 {
			return false
		}
	} else if Compare(v, r.Ceiling) >= 0 {
		return false
	}

	return true
}

// ParseRange parses either a bare version ("1.2.3", interpreted as
// Single(1.2.3)) or a bracketed interval ("[1.0.0,2.0.0)",
// "(1.0.0,2.0.0]", ...). This is the one grammar in the package that is
// awkward to scan left to right with a single cursor pass (the brackets
// need to be matched against each other), so it gets its own tiny
// recursive-descent helper instead of being folded into Parse.
func ParseRange(input string) (VersionRange, error) {
	p := &rangeParser{s: strings.TrimSpace(input)}

	switch p.peek() {
	case '[', '(':
		return p.bracketed()
	default:
		v, err := Parse(p.s)
		if err != nil {
			return VersionRange{}, bundleerr.WrapInvalidBundle(err, "invalid version range %q", input)
		}
		return Single(v), nil
	}
}

type rangeParser struct {
	s   string
	pos int
}

func (p *rangeParser) peek() rune {
	if p.pos >= len(p.s) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(p.s[p.pos:])
	return r
}

func (p *rangeParser) next() rune {
	if p.pos >= len(p.s) {
		return -1
	}
	r, size := utf8.DecodeRuneInString(p.s[p.pos:])
	p.pos += size
	return r
}

func (p *rangeParser) bracketed() (VersionRange, error) {
	open := p.next()
	floorInclusive := open == '['

	comma := strings.IndexByte(p.s[p.pos:], ',')
	if comma < 0 {
		return VersionRange{}, bundleerr.NewInvalidBundle("invalid version range %q: missing ','", p.s)
	}
	floorStr := strings.TrimSpace(p.s[p.pos : p.pos+comma])
	p.pos += comma + 1

	if len(p.s) == 0 || p.pos >= len(p.s) {
		return VersionRange{}, bundleerr.NewInvalidBundle("invalid version range %q: missing ceiling", p.s)
	}
	rest := p.s[p.pos:]
	closeIdx := strings.IndexAny(rest, "])")
	if closeIdx < 0 {
		return VersionRange{}, bundleerr.NewInvalidBundle("invalid version range %q: missing closing bracket", p.s)
	}
	ceilingStr := strings.TrimSpace(rest[:closeIdx])
	close := rest[closeIdx]
	p.pos += closeIdx + 1

	if p.pos != len(p.s) {
		return VersionRange{}, bundleerr.NewInvalidBundle("invalid version range %q: trailing characters", p.s)
	}

	floor, err := Parse(floorStr)
	if err != nil {
		return VersionRange{}, bundleerr.WrapInvalidBundle(err, "invalid version range %q: bad floor", p.s)
	}
	ceiling, err := Parse(ceilingStr)
	if err != nil {
		return VersionRange{}, bundleerr.WrapInvalidBundle(err, "invalid version range %q: bad ceiling", p.s)
	}

	r := VersionRange{
		Floor:            floor,
		Ceiling:          ceiling,
		FloorInclusive:   floorInclusive,
		CeilingInclusive: close == ']',
	}
	if Compare(r.Floor, r.Ceiling) > 0 {
		return VersionRange{}, bundleerr.NewInvalidBundle("invalid version range %q: floor greater than ceiling", p.s)
	}

	return r, nil
}

// String renders the canonical form: a bare version string for the
// "[floor, Infinite)" case, or the full bracketed interval otherwise.
func (r VersionRange) String() string {
	if r.Ceiling.infinite && r.FloorInclusive && !r.CeilingInclusive {
		return r.Floor.Canonical()
	}

	open := byte('(')
	if r.FloorInclusive {
		open = '['
	}
	close := byte(')')
	if r.CeilingInclusive {
		close = ']'
	}

	return string(open) + r.Floor.Canonical() + "," + r.Ceiling.Canonical() + string(close)
}
