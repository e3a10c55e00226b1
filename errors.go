package osgibundle

import (
	"fmt"
	"strings"

	"github.com/vireo-dev/osgibundle/manifest"
)

// AlreadyRegistered is returned by Registry.Add when a structurally equal
// bundle is already present.
type AlreadyRegistered struct {
	SymbolicName string
}

func (e AlreadyRegistered) Error() string {
	return fmt.Sprintf("bundle %s is already registered", e.SymbolicName)
}

// MissingRequiredBundle is a resolver diagnostic: owner declares a
// mandatory Require-Bundle with no satisfying candidate in the registry.
// It is a value collected into a result set, not a panic/exception.
type MissingRequiredBundle struct {
	Owner       *manifest.BundleInfo
	Requirement manifest.RequiredBundle
}

func (e MissingRequiredBundle) Error() string {
	return fmt.Sprintf("%s: missing required bundle %s", e.Owner.SymbolicName, e.Requirement.String())
}

// MissingImportedPackage is a resolver diagnostic: owner declares a
// mandatory Import-Package with no satisfying candidate.
type MissingImportedPackage struct {
	Owner       *manifest.BundleInfo
	Requirement manifest.ImportedPackage
}

func (e MissingImportedPackage) Error() string {
	return fmt.Sprintf("%s: missing imported package %s", e.Owner.SymbolicName, e.Requirement.String())
}

// MissingFragmentHost is a resolver diagnostic: owner declares a
// Fragment-Host with no satisfying candidate host bundle.
type MissingFragmentHost struct {
	Owner       *manifest.BundleInfo
	Requirement manifest.FragmentHost
}

func (e MissingFragmentHost) Error() string {
	return fmt.Sprintf("%s: missing fragment host %s", e.Owner.SymbolicName, e.Requirement.String())
}

// DependencyCycle is raised from CalculateRequiredBundles / Resolve* when
// the transitive walk revisits a bundle already on the current path. Path
// runs from that bundle's place on the walk's path down to the bundle that
// depends on it again, then repeats it, so the first and last entries are
// the same bundle.
type DependencyCycle struct {
	Path []*manifest.BundleInfo
}

// Error renders the requirement chain that closes the cycle, modeled on
// mvs.BuildListError: every entry but the last is followed by "requires\n\t",
// so the result reads as "A@1 requires\n\tB@2 requires\n\tA@1".
func (e DependencyCycle) Error() string {
	var sb strings.Builder
	for _, b := range e.Path[:len(e.Path)-1] {
		fmt.Fprintf(&sb, "%s@%s requires\n\t", b.SymbolicName, b.Version)
	}
	last := e.Path[len(e.Path)-1]
	fmt.Fprintf(&sb, "%s@%s", last.SymbolicName, last.Version)
	return sb.String()
}
