package osgibundle

import (
	"reflect"

	"golang.org/x/mod/module"

	"github.com/vireo-dev/osgibundle/manifest"
)

// ResolverResult is the tagged-variant result of walking one bundle's
// dependencies: either a DependencyResult naming the candidate a wire
// settled on, or one of the three Missing* diagnostics.
type ResolverResult interface {
	isResolverResult()
}

// DependencyResult names the candidate a wire resolved to, and whether
// that candidate is itself resolved in the registry at the time of the
// walk.
type DependencyResult struct {
	Candidate *manifest.BundleInfo
	State     ResolveState
}

func (DependencyResult) isResolverResult() {}
func (MissingRequiredBundle) isResolverResult() {}
func (MissingImportedPackage) isResolverResult() {}
func (MissingFragmentHost) isResolverResult() {}

// bundleIdentity is the traversal identity of a bundle: its symbolic name
// and canonical version, modeled on golang.org/x/mod/module.Version's
// (Path, Version) identity pair. It is what the path/cache machinery keys
// on, so structurally distinct BundleInfo values that happen to be the
// same named version are still treated as one node -- matching how OSGi
// bundles are addressed in practice.
func bundleIdentity(b *manifest.BundleInfo) module.Version {
	return module.Version{Path: b.SymbolicName, Version: b.Version.Canonical()}
}

type pathEntry struct {
	id   module.Version
	info *manifest.BundleInfo
}

type cacheEntry struct {
	id      module.Version
	results []ResolverResult
}

// traversal carries the per-call memoization cache across the recursive
// walk of CalculateRequiredBundles; a fresh traversal is created for every
// top-level call.
type traversal struct {
	registry *Registry
	cache    []cacheEntry
}

func (t *traversal) lookup(id module.Version) ([]ResolverResult, bool) {
	for _, e := range t.cache {
		if e.id == id {
			return e.results, true
		}
	}
	return nil, false
}

func (t *traversal) store(id module.Version, results []ResolverResult) {
	t.cache = append(t.cache, cacheEntry{id: id, results: results})
}

// CalculateRequiredBundles walks bundle's declared dependencies
// transitively, building one wire per RequiredBundle, ImportedPackage, and
// (if present) FragmentHost, skipping optional wires unless
// includeOptional is true. It returns the deduplicated set of
// DependencyResult/Missing* diagnostics reached, or a DependencyCycle if
// the walk revisits a bundle already on its current path.
func (r *Registry) CalculateRequiredBundles(bundle *manifest.BundleInfo, includeOptional bool) ([]ResolverResult, error) {
	t := &traversal{registry: r}
	return t.walk(bundle, nil, includeOptional)
}

func (t *traversal) walk(bundle *manifest.BundleInfo, path []pathEntry, includeOptional bool) ([]ResolverResult, error) {
	id := bundleIdentity(bundle)
	if cached, ok := t.lookup(id); ok {
		return cached, nil
	}

	currentPath := append(append([]pathEntry{}, path...), pathEntry{id: id, info: bundle})

	var results []ResolverResult
	for _, w := range buildWires(bundle, includeOptional) {
		chosen, missing := w.classify(bundle, t.registry)
		if missing != nil {
			results = appendUniqueResult(results, missing)
			continue
		}
		if chosen == nil {
			continue
		}

		chosenID := bundleIdentity(chosen.info)
		if idx := indexOfPath(currentPath, chosenID); idx >= 0 {
			cycle := make([]*manifest.BundleInfo, 0, len(currentPath)-idx+1)
			for _, e := range currentPath[idx:] {
				cycle = append(cycle, e.info)
			}
			cycle = append(cycle, chosen.info)
			return nil, DependencyCycle{Path: cycle}
		}

		state := Unresolved
		if chosen.state == Resolved {
			state = Resolved
		}
		results = appendUniqueResult(results, DependencyResult{Candidate: chosen.info, State: state})

		sub, err := t.walk(chosen.info, currentPath, includeOptional)
		if err != nil {
			return nil, err
		}
		for _, s := range sub {
			results = appendUniqueResult(results, s)
		}
	}

	t.store(id, results)
	return results, nil
}

func indexOfPath(path []pathEntry, id module.Version) int {
	for i, e := range path {
		if e.id == id {
			return i
		}
	}
	return -1
}

func appendUniqueResult(results []ResolverResult, r ResolverResult) []ResolverResult {
	for _, existing := range results {
		if reflect.DeepEqual(existing, r) {
			return results
		}
	}
	return append(results, r)
}

// wire is one dependency declared by a bundle, paired with the closure
// that resolves it against the registry's current state.
type wire struct {
	classify func(owner *manifest.BundleInfo, r *Registry) (*BundleRecord, error)
}

func buildWires(bundle *manifest.BundleInfo, includeOptional bool) []wire {
	var wires []wire

	for _, req := range bundle.RequiredBundles {
		req := req
		if !includeOptional && req.Optional {
			continue
		}
		wires = append(wires, wire{classify: func(owner *manifest.BundleInfo, r *Registry) (*BundleRecord, error) {
			return classifyRequiredBundle(owner, req, r)
		}})
	}

	for _, imp := range bundle.ImportedPackages {
		imp := imp
		if !includeOptional && imp.Optional {
			continue
		}
		wires = append(wires, wire{classify: func(owner *manifest.BundleInfo, r *Registry) (*BundleRecord, error) {
			return classifyImportedPackage(owner, imp, r)
		}})
	}

	if bundle.FragmentHost != nil {
		fh := *bundle.FragmentHost
		wires = append(wires, wire{classify: func(owner *manifest.BundleInfo, r *Registry) (*BundleRecord, error) {
			return classifyFragmentHost(owner, fh, r)
		}})
	}

	return wires
}

func classifyRequiredBundle(owner *manifest.BundleInfo, req manifest.RequiredBundle, r *Registry) (*BundleRecord, error) {
	candidates := r.FindBundlesForRequiredBundle(req)
	if len(candidates) == 0 {
		if req.Optional {
			return nil, nil
		}
		return nil, MissingRequiredBundle{Owner: owner, Requirement: req}
	}
	return selectCandidate(candidates, owner), nil
}

func classifyImportedPackage(owner *manifest.BundleInfo, imp manifest.ImportedPackage, r *Registry) (*BundleRecord, error) {
	candidates := r.FindBundlesForImportedPackage(imp)
	if len(candidates) == 0 {
		if imp.Optional {
			return nil, nil
		}
		return nil, MissingImportedPackage{Owner: owner, Requirement: imp}
	}
	return selectCandidate(candidates, owner), nil
}

func classifyFragmentHost(owner *manifest.BundleInfo, fh manifest.FragmentHost, r *Registry) (*BundleRecord, error) {
	candidates := r.FindBundlesForFragmentHost(fh)
	if len(candidates) == 0 {
		return nil, MissingFragmentHost{Owner: owner, Requirement: fh}
	}
	return selectCandidate(candidates, owner), nil
}

// selectCandidate applies the "internal dependency" rule shared by every
// wire kind: when the head candidate is the owner itself, the next
// candidate is chosen; when the owner is the only candidate, the
// dependency is satisfied internally and produces no wire at all. Only the head
// candidate is ever checked against the owner -- Add rejects structural
// duplicates, so the owner can appear in a candidate list at most once.
func selectCandidate(candidates []*BundleRecord, owner *manifest.BundleInfo) *BundleRecord {
	if len(candidates) == 0 {
		return nil
	}
	head := candidates[0]
	if bundleInfoEqual(head.info, owner) {
		if len(candidates) > 1 {
			return candidates[1]
		}
		return nil
	}
	return head
}

// Resolve attempts to resolve bundle against the registry's current
// state: it computes CalculateRequiredBundles(bundle, false) and collects
// only the error diagnostics. If there are none, bundle transitions to
// Resolved (when it is registered); otherwise it stays Unresolved. Already
// Resolved bundles short-circuit successfully without re-walking.
func (r *Registry) Resolve(bundle *manifest.BundleInfo) ([]error, error) {
	if rec := r.findRegistered(bundle); rec != nil && rec.state == Resolved {
		return nil, nil
	}

	results, err := r.CalculateRequiredBundles(bundle, false)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, res := range results {
		if e, ok := res.(error); ok {
			errs = append(errs, e)
		}
	}

	if rec := r.findRegistered(bundle); rec != nil {
		if len(errs) == 0 {
			rec.state = Resolved
		}
	}

	return errs, nil
}

// ResolveAll resolves every registered bundle, in insertion order,
// folding the error sets together. It is idempotent and monotonic:
// repeated calls only ever move unresolved bundles to resolved, and
// adding a bundle that satisfies a previously-missing dependency lets a
// later call recover it.
func (r *Registry) ResolveAll() ([]error, error) {
	var errs []error
	for _, rec := range r.records {
		recErrs, err := r.Resolve(rec.info)
		if err != nil {
			return nil, err
		}
		errs = append(errs, recErrs...)
	}
	return errs, nil
}

// IsResolved reports whether bundle is currently recorded as Resolved. An
// unregistered bundle is never resolved.
func (r *Registry) IsResolved(bundle *manifest.BundleInfo) bool {
	rec := r.findRegistered(bundle)
	return rec != nil && rec.state == Resolved
}

func (r *Registry) findRegistered(bundle *manifest.BundleInfo) *BundleRecord {
	for _, rec := range r.records {
		if rec.equalBundle(bundle) {
			return rec
		}
	}
	return nil
}
