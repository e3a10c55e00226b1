package version

import "testing"

type versionTestCase struct {
	input     string
	output    Version
	canonical string
}

var versionTestCases = []versionTestCase{
	{"2", Version{Major: 2}, "2"},
	{"1.2.3", Version{Major: 1, Minor: 2, Micro: 3}, "1.2.3"},
	{"1.2.3.something", Version{Major: 1, Minor: 2, Micro: 3, Qualifier: "something"}, "1.2.3.something"},
	{"1.2", Version{Major: 1, Minor: 2}, "1.2"},
	{"1.0.0", Version{Major: 1}, "1"},
	{"1.2.0", Version{Major: 1, Minor: 2}, "1.2"},
	{"0.0.0", Version{}, "0"},
}

func TestParse(t *testing.T) {
	for _, tc := range versionTestCases {
		t.Run(tc.input, func(t *testing.T) {
			v, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
			}
			if v != tc.output {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.input, v, tc.output)
			}
			if got := v.Canonical(); got != tc.canonical {
				t.Fatalf("Parse(%q).Canonical() = %q, want %q", tc.input, got, tc.canonical)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"a.0.0", "1.b.0", "1.0.c", "-1.0.0"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) expected an error, got none", input)
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	for _, tc := range versionTestCases {
		v := MustParse(tc.input)
		v2, err := Parse(v.Canonical())
		if err != nil {
			t.Fatalf("re-parsing canonical form %q failed: %v", v.Canonical(), err)
		}
		if v2 != v {
			t.Fatalf("round trip mismatch: %+v != %+v", v2, v)
		}
	}
}

func TestDefaultIsSmallest(t *testing.T) {
	versions := []Version{
		MustParse("0.0.1"),
		MustParse("1.0.0"),
		MustParse("100.200.300.qualifier"),
		Infinite,
	}
	for _, v := range versions {
		if !Default.LessThan(v) {
			t.Fatalf("expected Default < %s", v)
		}
	}
}

func TestInfiniteGreaterThanEverything(t *testing.T) {
	versions := []Version{
		Default,
		MustParse("999.999.999.zzz"),
	}
	for _, v := range versions {
		if !v.LessThan(Infinite) {
			t.Fatalf("expected %s < Infinite", v)
		}
		if !Infinite.GreaterThan(v) {
			t.Fatalf("expected Infinite > %s", v)
		}
	}
}

// Infinite.GreaterThan(Infinite) is the deliberate exception documented in
// SPEC_FULL.md §9: it holds even when comparing Infinite to itself, which is
// what excludes Infinite from a ceiling-inclusive [_, Infinite] range.
func TestInfiniteGreaterThanItself(t *testing.T) {
	if !Infinite.GreaterThan(Infinite) {
		t.Fatal("expected Infinite > Infinite")
	}
}

func TestCompareOrdering(t *testing.T) {
	ordered := []Version{
		MustParse("1.0.0"),
		MustParse("1.0.1"),
		MustParse("1.1.0"),
		MustParse("2.0.0"),
		MustParse("2.0.0.alpha"),
		MustParse("2.0.0.beta"),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].LessThan(ordered[i+1]) {
			t.Fatalf("expected %s < %s", ordered[i], ordered[i+1])
		}
	}
}
