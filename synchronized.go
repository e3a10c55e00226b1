package osgibundle

import (
	"sync"

	"github.com/vireo-dev/osgibundle/manifest"
	"github.com/vireo-dev/osgibundle/version"
)

// SynchronizedRegistry is a coarse-mutex facade over *Registry, for the
// case noted in the concurrency model: a Registry has no internal
// synchronization, so parallel callers must serialize through a single
// exclusive critical section.
type SynchronizedRegistry struct {
	mu  sync.Mutex
	reg *Registry
}

// NewSynchronizedRegistry wraps a freshly constructed Registry.
func NewSynchronizedRegistry(systemPackages, systemPackagesExtra string) *SynchronizedRegistry {
	return &SynchronizedRegistry{reg: NewRegistry(systemPackages, systemPackagesExtra)}
}

func (s *SynchronizedRegistry) Add(bundle *manifest.BundleInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Add(bundle)
}

func (s *SynchronizedRegistry) FindBundles(name string, r version.VersionRange) []*BundleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.FindBundles(name, r)
}

func (s *SynchronizedRegistry) FindBundle(name string, r version.VersionRange) (*BundleRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.FindBundle(name, r)
}

func (s *SynchronizedRegistry) CalculateRequiredBundles(bundle *manifest.BundleInfo, includeOptional bool) ([]ResolverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.CalculateRequiredBundles(bundle, includeOptional)
}

func (s *SynchronizedRegistry) Resolve(bundle *manifest.BundleInfo) ([]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Resolve(bundle)
}

func (s *SynchronizedRegistry) ResolveAll() ([]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.ResolveAll()
}

func (s *SynchronizedRegistry) IsResolved(bundle *manifest.BundleInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.IsResolved(bundle)
}
