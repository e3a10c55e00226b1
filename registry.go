package osgibundle

import (
	"sort"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/vireo-dev/osgibundle/manifest"
	"github.com/vireo-dev/osgibundle/version"
)

// systemBundleSymbolicName is the fixed symbolic name of the synthetic
// bundle seeded at registry construction.
const systemBundleSymbolicName = "system.bundle"

// Registry is an indexed, in-memory store of bundles plus their resolve
// state. It is not safe for concurrent use; wrap it in SynchronizedRegistry
// if multiple actors need access.
type Registry struct {
	records []*BundleRecord
	nextID  int

	// symbolicNameIndex maps a symbolic name to the ordered list of
	// bundle IDs registered under it, in insertion order.
	symbolicNameIndex *orderedmap.OrderedMap
	// exportIndex maps an exported package name to the ordered list of
	// (export, owning bundle ID) pairs, in insertion order.
	exportIndex *orderedmap.OrderedMap
	// fragmentIndex maps a host symbolic name to the ordered list of
	// fragment bundle IDs attached to it, in insertion order.
	fragmentIndex *orderedmap.OrderedMap
}

type exportEntry struct {
	export   manifest.ExportedPackage
	bundleID int
}

// NewRegistry constructs a registry and seeds the synthetic system bundle,
// exporting the packages named by systemPackages and systemPackagesExtra
// (each a comma-separated list; systemPackagesExtra is appended). The
// system bundle is assigned ID 0.
func NewRegistry(systemPackages, systemPackagesExtra string) *Registry {
	r := &Registry{
		symbolicNameIndex: orderedmap.New(),
		exportIndex:       orderedmap.New(),
		fragmentIndex:     orderedmap.New(),
	}

	names := splitNonEmpty(systemPackages)
	names = append(names, splitNonEmpty(systemPackagesExtra)...)

	exports := make([]manifest.ExportedPackage, 0, len(names))
	for _, name := range names {
		exports = append(exports, manifest.ExportedPackage{Name: name, Version: version.Default})
	}

	system := &manifest.BundleInfo{
		ManifestVersion:  2,
		SymbolicName:     systemBundleSymbolicName,
		Version:          version.Default,
		ExportedPackages: exports,
		Headers:          map[string]string{},
	}

	r.insert(system)

	return r
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Add registers bundle. It rejects a structural duplicate with
// AlreadyRegistered; otherwise it assigns the next ID, inserts the bundle
// into all three indexes, and leaves it Unresolved.
func (r *Registry) Add(bundle *manifest.BundleInfo) error {
	for _, rec := range r.records {
		if rec.equalBundle(bundle) {
			return AlreadyRegistered{SymbolicName: bundle.SymbolicName}
		}
	}
	r.insert(bundle)
	return nil
}

func (r *Registry) insert(bundle *manifest.BundleInfo) *BundleRecord {
	rec := &BundleRecord{id: r.nextID, info: bundle, state: Unresolved}
	r.nextID++
	r.records = append(r.records, rec)

	appendID(r.symbolicNameIndex, bundle.SymbolicName, rec.id)

	for _, exp := range bundle.ExportedPackages {
		appendExport(r.exportIndex, exp.Name, exportEntry{export: exp, bundleID: rec.id})
	}

	if bundle.IsFragment() {
		appendID(r.fragmentIndex, bundle.FragmentHost.SymbolicName, rec.id)
	}

	return rec
}

func appendID(m *orderedmap.OrderedMap, key string, id int) {
	existing, ok := m.Get(key)
	if !ok {
		m.Set(key, []int{id})
		return
	}
	m.Set(key, append(existing.([]int), id))
}

func appendExport(m *orderedmap.OrderedMap, key string, e exportEntry) {
	existing, ok := m.Get(key)
	if !ok {
		m.Set(key, []exportEntry{e})
		return
	}
	m.Set(key, append(existing.([]exportEntry), e))
}

func (r *Registry) recordByID(id int) *BundleRecord {
	for _, rec := range r.records {
		if rec.id == id {
			return rec
		}
	}
	return nil
}

// FindBundles returns every registered bundle with the given symbolic name
// whose version falls inside r2, in priority order (best candidate first).
func (r *Registry) FindBundles(name string, r2 version.VersionRange) []*BundleRecord {
	v, ok := r.symbolicNameIndex.Get(name)
	if !ok {
		return nil
	}
	ids := v.([]int)

	var candidates []*BundleRecord
	for _, id := range ids {
		rec := r.recordByID(id)
		if rec != nil && r2.Contains(rec.info.Version) {
			candidates = append(candidates, rec)
		}
	}
	sortByPriority(candidates)
	return candidates
}

// FindBundle returns the head of FindBundles, if any.
func (r *Registry) FindBundle(name string, r2 version.VersionRange) (*BundleRecord, bool) {
	candidates := r.FindBundles(name, r2)
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// FindBundlesForRequiredBundle resolves a Require-Bundle dependency to its
// candidate bundles.
func (r *Registry) FindBundlesForRequiredBundle(req manifest.RequiredBundle) []*BundleRecord {
	return r.FindBundles(req.SymbolicName, req.Version)
}

// FindBundlesForFragmentHost resolves a Fragment-Host dependency to its
// candidate host bundles.
func (r *Registry) FindBundlesForFragmentHost(fh manifest.FragmentHost) []*BundleRecord {
	return r.FindBundles(fh.SymbolicName, fh.Version)
}

// FindBundlesForImportedPackage resolves an Import-Package dependency to
// its candidate exporting bundles, applying all five OSGi matching rules:
// version range, bundle-symbolic-name, bundle-version range, mandatory
// attributes, and matching attributes.
func (r *Registry) FindBundlesForImportedPackage(imp manifest.ImportedPackage) []*BundleRecord {
	v, ok := r.exportIndex.Get(imp.Name)
	if !ok {
		return nil
	}
	entries := v.([]exportEntry)

	var candidates []*BundleRecord
	seen := map[int]struct{}{}

	for _, e := range entries {
		owner := r.recordByID(e.bundleID)
		if owner == nil {
			continue
		}
		if !imp.Version.Contains(e.export.Version) {
			continue
		}
		if imp.BundleSymbolicName != "" && owner.SymbolicName() != imp.BundleSymbolicName {
			continue
		}
		if !imp.BundleVersion.Contains(owner.info.Version) {
			continue
		}
		if !attributesSatisfied(e.export, imp) {
			continue
		}
		if _, dup := seen[owner.id]; dup {
			continue
		}
		seen[owner.id] = struct{}{}
		candidates = append(candidates, owner)
	}

	sortByPriority(candidates)
	return candidates
}

func attributesSatisfied(export manifest.ExportedPackage, imp manifest.ImportedPackage) bool {
	for mandatory := range export.MandatoryAttributes {
		if _, ok := imp.MatchingAttributes[mandatory]; !ok {
			return false
		}
	}
	for key, want := range imp.MatchingAttributes {
		got, ok := export.MatchingAttributes[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// FindFragments returns every fragment bundle attached to host, in
// priority order.
func (r *Registry) FindFragments(host *BundleRecord) []*BundleRecord {
	v, ok := r.fragmentIndex.Get(host.SymbolicName())
	if !ok {
		return nil
	}
	ids := v.([]int)

	var candidates []*BundleRecord
	for _, id := range ids {
		rec := r.recordByID(id)
		if rec != nil && rec.info.FragmentHost.Version.Contains(host.info.Version) {
			candidates = append(candidates, rec)
		}
	}
	sortByPriority(candidates)
	return candidates
}

// SymbolicNames returns every distinct symbolic name currently registered,
// in first-insertion order. Supplemental diagnostic, not part of the
// resolver's hot path.
func (r *Registry) SymbolicNames() []string {
	return r.symbolicNameIndex.Keys()
}

// ExportedPackageNames returns every distinct exported package name
// currently registered, in first-insertion order.
func (r *Registry) ExportedPackageNames() []string {
	return r.exportIndex.Keys()
}

// sortByPriority orders candidates best-first: resolved over unresolved,
// higher version over lower, lower ID over higher.
func sortByPriority(candidates []*BundleRecord) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return higherPriority(candidates[i], candidates[j])
	})
}

func higherPriority(a, b *BundleRecord) bool {
	if (a.state == Resolved) != (b.state == Resolved) {
		return a.state == Resolved
	}
	if cmp := version.Compare(a.info.Version, b.info.Version); cmp != 0 {
		return cmp > 0
	}
	return a.id < b.id
}
