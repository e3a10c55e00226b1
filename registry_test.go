package osgibundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireo-dev/osgibundle/manifest"
	"github.com/vireo-dev/osgibundle/version"
)

func mustParse(t *testing.T, headers map[string]string) *manifest.BundleInfo {
	t.Helper()
	b, err := manifest.Parse(headers)
	require.NoError(t, err)
	return b
}

func TestSystemBundleSeeded(t *testing.T) {
	r := NewRegistry("javax.mail,javax.ssl", "")
	rec, ok := r.FindBundle(systemBundleSymbolicName, version.DefaultRange)
	require.True(t, ok)
	assert.Equal(t, 0, rec.ID())
}

func TestAddRejectsDuplicate(t *testing.T) {
	r := NewRegistry("", "")
	a := mustParse(t, map[string]string{"Bundle-SymbolicName": "a"})
	require.NoError(t, r.Add(a))

	a2 := mustParse(t, map[string]string{"Bundle-SymbolicName": "a"})
	err := r.Add(a2)
	require.Error(t, err)
	_, ok := err.(AlreadyRegistered)
	assert.True(t, ok)
}

func TestSystemBundleExportScenario(t *testing.T) {
	r := NewRegistry("javax.mail,javax.ssl", "")
	a := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "a",
		"Import-Package":      "javax.ssl",
	})
	require.NoError(t, r.Add(a))

	results, err := r.CalculateRequiredBundles(a, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	dep, ok := results[0].(DependencyResult)
	require.True(t, ok)
	assert.Equal(t, systemBundleSymbolicName, dep.Candidate.SymbolicName)
}

func TestVersionRangePriorityScenario(t *testing.T) {
	r := NewRegistry("", "")

	a1 := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "A",
		"Bundle-Version":      "1.0.0",
		"Export-Package":      "p",
	})
	a2 := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "A",
		"Bundle-Version":      "2.0.0",
		"Export-Package":      "p",
	})
	bb2 := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "B",
		"Bundle-Version":      "2.0.0",
		"Require-Bundle":      "A",
		"Import-Package":      "p",
	})

	require.NoError(t, r.Add(a1))
	require.NoError(t, r.Add(a2))
	require.NoError(t, r.Add(bb2))

	_, err := r.Resolve(a2)
	require.NoError(t, err)
	_, err = r.Resolve(bb2)
	require.NoError(t, err)

	rec, ok := r.FindBundle("A", version.DefaultRange)
	require.True(t, ok)
	assert.Equal(t, version.MustParse("2.0.0"), rec.Info().Version)
	assert.Equal(t, Resolved, rec.State())

	impCandidates := r.FindBundlesForImportedPackage(manifest.ImportedPackage{
		Name: "p", Version: version.DefaultRange, BundleVersion: version.DefaultRange,
	})
	require.NotEmpty(t, impCandidates)
	assert.Equal(t, version.MustParse("2.0.0"), impCandidates[0].Info().Version)

	_, err = r.Resolve(a1)
	require.NoError(t, err)

	rec2, ok := r.FindBundle("A", version.DefaultRange)
	require.True(t, ok)
	assert.Equal(t, version.MustParse("2.0.0"), rec2.Info().Version)
}

func TestCycleScenario(t *testing.T) {
	r := NewRegistry("", "")

	a := mustParse(t, map[string]string{"Bundle-SymbolicName": "A", "Require-Bundle": "C"})
	b := mustParse(t, map[string]string{"Bundle-SymbolicName": "B", "Require-Bundle": "A"})
	c := mustParse(t, map[string]string{"Bundle-SymbolicName": "C", "Require-Bundle": "B"})

	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))
	require.NoError(t, r.Add(c))

	_, err := r.CalculateRequiredBundles(c, false)
	require.Error(t, err)
	cycle, ok := err.(DependencyCycle)
	require.True(t, ok)

	names := make([]string, len(cycle.Path))
	for i, info := range cycle.Path {
		names[i] = info.SymbolicName
	}
	assert.Equal(t, []string{"C", "B", "A", "C"}, names)
}

func TestInternalImportScenario(t *testing.T) {
	r := NewRegistry("", "")
	a := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "A",
		"Bundle-Version":      "1.0.0",
		"Export-Package":      "p",
		"Import-Package":      "p",
	})
	require.NoError(t, r.Add(a))

	errs, err := r.ResolveAll()
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.True(t, r.IsResolved(a))
}

func TestMatchingAttributesScenario(t *testing.T) {
	r := NewRegistry("", "")

	c := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "C",
		"Bundle-Version":      "3.0.0",
		"Export-Package":      "t;attr1=value1;attr2=value2",
	})
	d := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "D",
		"Bundle-Version":      "4.0.0",
		"Export-Package":      "t;attr3=value3;attr4=value4",
	})
	require.NoError(t, r.Add(c))
	require.NoError(t, r.Add(d))

	matchC := r.FindBundlesForImportedPackage(manifest.ImportedPackage{
		Name: "t", Version: version.DefaultRange, BundleVersion: version.DefaultRange,
		MatchingAttributes: map[string]string{"attr1": "value1"},
	})
	require.NotEmpty(t, matchC)
	assert.Equal(t, "C", matchC[0].SymbolicName())
	assert.Equal(t, 1, matchC[0].ID())

	matchD := r.FindBundlesForImportedPackage(manifest.ImportedPackage{
		Name: "t", Version: version.DefaultRange, BundleVersion: version.DefaultRange,
		MatchingAttributes: map[string]string{"attr3": "value3", "attr4": "value4"},
	})
	require.NotEmpty(t, matchD)
	assert.Equal(t, "D", matchD[0].SymbolicName())

	mismatch := r.FindBundlesForImportedPackage(manifest.ImportedPackage{
		Name: "t", Version: version.DefaultRange, BundleVersion: version.DefaultRange,
		MatchingAttributes: map[string]string{"attr1": "wrong"},
	})
	assert.Empty(t, mismatch)
}

func TestRecoveryFromErrorScenario(t *testing.T) {
	r := NewRegistry("", "")
	b := mustParse(t, map[string]string{"Bundle-SymbolicName": "B", "Require-Bundle": "A"})
	require.NoError(t, r.Add(b))

	errs, err := r.ResolveAll()
	require.NoError(t, err)
	require.Len(t, errs, 1)
	_, ok := errs[0].(MissingRequiredBundle)
	assert.True(t, ok)

	a := mustParse(t, map[string]string{"Bundle-SymbolicName": "A"})
	require.NoError(t, r.Add(a))

	errs, err = r.ResolveAll()
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.True(t, r.IsResolved(a))
	assert.True(t, r.IsResolved(b))
}

func TestOptionalDependencyNeverMissing(t *testing.T) {
	r := NewRegistry("", "")
	a := mustParse(t, map[string]string{
		"Bundle-SymbolicName": "A",
		"Require-Bundle":      "Ghost;resolution:=optional",
	})
	require.NoError(t, r.Add(a))

	results, err := r.CalculateRequiredBundles(a, false)
	require.NoError(t, err)
	assert.Empty(t, results)
}
