package osgibundle

import "github.com/vireo-dev/osgibundle/manifest"

// ResolveState is a bundle's position in the two-state resolve machine.
type ResolveState int

const (
	// Unresolved is the initial state of every added bundle.
	Unresolved ResolveState = iota
	// Resolved means every one of the bundle's non-optional dependencies
	// had a satisfying candidate the last time it was resolved.
	Resolved
)

func (s ResolveState) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "unresolved"
}

// BundleRecord pairs a parsed bundle with the bookkeeping the registry
// needs: its assigned ID and its current resolve state. Bundles compare
// structurally; the ID and state live alongside the bundle, not inside it,
// so two records for bundles with the same BundleInfo never collide on
// identity. Every lookup on Registry returns BundleRecord values, so host
// code can read a candidate's identity without reaching into the
// registry's own indexes.
type BundleRecord struct {
	id    int
	info  *manifest.BundleInfo
	state ResolveState
}

// ID returns the bundle's registry-assigned ID, per spec.md §6.3's
// mirrored-on-the-registry-side accessor.
func (r *BundleRecord) ID() int {
	return r.id
}

// Info returns the parsed bundle this record wraps.
func (r *BundleRecord) Info() *manifest.BundleInfo {
	return r.info
}

// State returns the bundle's current resolve state.
func (r *BundleRecord) State() ResolveState {
	return r.state
}

// SymbolicName returns the wrapped bundle's symbolic name.
func (r *BundleRecord) SymbolicName() string {
	return r.info.SymbolicName
}

// equalBundle reports whether other describes the same bundle, by
// structural equality of the two BundleInfo values it was parsed from.
func (r *BundleRecord) equalBundle(other *manifest.BundleInfo) bool {
	return bundleInfoEqual(r.info, other)
}
