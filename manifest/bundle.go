// Package manifest turns an OSGi R4 bundle manifest -- a mapping from
// header name to raw header value -- into a BundleInfo, and defines the
// plain data types that make up that model.
package manifest

import (
	"sort"
	"strings"

	"github.com/vireo-dev/osgibundle/version"
)

// Extension identifies the attach point of a fragment bundle.
type Extension int

const (
	// ExtensionNone is the default: the fragment attaches to a regular host
	// bundle's class space.
	ExtensionNone Extension = iota
	// ExtensionFramework attaches the fragment to the framework itself.
	ExtensionFramework
	// ExtensionBootClassPath attaches the fragment to the boot class path.
	ExtensionBootClassPath
)

// ImportedPackage is one Import-Package clause.
type ImportedPackage struct {
	Name               string
	Optional           bool
	Version            version.VersionRange
	BundleSymbolicName string
	BundleVersion      version.VersionRange
	MatchingAttributes map[string]string
}

// String renders the canonical diagnostic form: name, then resolution,
// version, bundle-symbolic-name, bundle-version, then matching attributes
// in key order.
func (p ImportedPackage) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if p.Optional {
		sb.WriteString(";resolution:=optional")
	}
	if p.Version != version.DefaultRange {
		sb.WriteString(`;version="`)
		sb.WriteString(p.Version.String())
		sb.WriteByte('"')
	}
	if p.BundleSymbolicName != "" {
		sb.WriteString(";bundle-symbolic-name=")
		sb.WriteString(p.BundleSymbolicName)
	}
	if p.BundleVersion != version.DefaultRange {
		sb.WriteString(`;bundle-version="`)
		sb.WriteString(p.BundleVersion.String())
		sb.WriteByte('"')
	}
	writeAttributes(&sb, p.MatchingAttributes)
	return sb.String()
}

// ExportedPackage is one Export-Package clause, expanded to a single
// package name (a clause naming several packages expands to one
// ExportedPackage per name, all sharing the other fields).
type ExportedPackage struct {
	Name                string
	Version             version.Version
	Uses                map[string]struct{}
	MandatoryAttributes map[string]struct{}
	IncludedClasses     map[string]struct{}
	ExcludedClasses     map[string]struct{}
	MatchingAttributes  map[string]string
}

func (e ExportedPackage) String() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	if e.Version != version.Default {
		sb.WriteString(`;version="`)
		sb.WriteString(e.Version.String())
		sb.WriteByte('"')
	}
	if len(e.Uses) > 0 {
		sb.WriteString(`;uses:="`)
		sb.WriteString(strings.Join(sortedKeys(e.Uses), ","))
		sb.WriteByte('"')
	}
	if len(e.MandatoryAttributes) > 0 {
		sb.WriteString(";mandatory:=")
		sb.WriteString(strings.Join(sortedKeys(e.MandatoryAttributes), ","))
	}
	if len(e.IncludedClasses) > 0 {
		sb.WriteString(";include:=")
		sb.WriteString(strings.Join(sortedKeys(e.IncludedClasses), ","))
	}
	if len(e.ExcludedClasses) > 0 {
		sb.WriteString(";exclude:=")
		sb.WriteString(strings.Join(sortedKeys(e.ExcludedClasses), ","))
	}
	writeAttributes(&sb, e.MatchingAttributes)
	return sb.String()
}

// RequiredBundle is one Require-Bundle clause.
type RequiredBundle struct {
	SymbolicName string
	Optional     bool
	Version      version.VersionRange
	Reexport     bool
}

// String emits in version;resolution;visibility order, per the canonical
// form used by tests and diagnostics.
func (r RequiredBundle) String() string {
	var sb strings.Builder
	sb.WriteString(r.SymbolicName)
	if r.Version != version.DefaultRange {
		sb.WriteString(`;version="`)
		sb.WriteString(r.Version.String())
		sb.WriteByte('"')
	}
	if r.Optional {
		sb.WriteString(";resolution:=optional")
	}
	if r.Reexport {
		sb.WriteString(";visibility:=reexport")
	}
	return sb.String()
}

// FragmentHost is a bundle's (at most one) Fragment-Host declaration.
type FragmentHost struct {
	SymbolicName string
	Version      version.VersionRange
	Extension    Extension
}

func (f FragmentHost) String() string {
	var sb strings.Builder
	sb.WriteString(f.SymbolicName)
	if f.Version != version.DefaultRange {
		sb.WriteString(`;version="`)
		sb.WriteString(f.Version.String())
		sb.WriteByte('"')
	}
	switch f.Extension {
	case ExtensionFramework:
		sb.WriteString(";extension:=framework")
	case ExtensionBootClassPath:
		sb.WriteString(";extension:=bootclasspath")
	}
	return sb.String()
}

// BundleInfo is the parsed form of a bundle manifest.
type BundleInfo struct {
	ManifestVersion   int
	SymbolicName      string
	Name              string
	Description       string
	Version           version.Version
	FragmentHost      *FragmentHost
	ExportedPackages  []ExportedPackage
	ImportedPackages  []ImportedPackage
	RequiredBundles   []RequiredBundle

	// Headers carries every raw header, including ones the parser does not
	// otherwise interpret, for pass-through lookups.
	Headers map[string]string
}

// IsFragment reports whether the bundle declares a Fragment-Host.
func (b *BundleInfo) IsFragment() bool {
	return b.FragmentHost != nil
}

// Header returns the raw value of the named header and whether it was
// present in the source manifest, matching the header name
// case-insensitively as RFC822 headers require.
func (b *BundleInfo) Header(name string) (string, bool) {
	return headerLookup(b.Headers, name)
}

// RawHeaders returns every header from the source manifest, including
// ones Parse does not otherwise interpret.
func (b *BundleInfo) RawHeaders() map[string]string {
	return b.Headers
}

func writeAttributes(sb *strings.Builder, attrs map[string]string) {
	for _, k := range sortedStringKeys(attrs) {
		sb.WriteByte(';')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(attrs[k])
		sb.WriteByte('"')
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
