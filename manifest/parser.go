package manifest

import (
	"strconv"
	"strings"

	"github.com/vireo-dev/osgibundle/bundleerr"
	"github.com/vireo-dev/osgibundle/version"
)

const (
	headerManifestVersion = "Bundle-ManifestVersion"
	headerSymbolicName    = "Bundle-SymbolicName"
	headerVersion         = "Bundle-Version"
	headerName            = "Bundle-Name"
	headerDescription     = "Bundle-Description"
	headerFragmentHost    = "Fragment-Host"
	headerImportPackage   = "Import-Package"
	headerExportPackage   = "Export-Package"
	headerRequireBundle   = "Require-Bundle"
)

// Parse turns a raw header mapping into a BundleInfo, enforcing OSGi R4
// semantics. Every failure is an *bundleerr.InvalidBundle.
func Parse(headers map[string]string) (*BundleInfo, error) {
	b := &BundleInfo{Headers: headers}

	manifestVersionRaw, _ := headerLookup(headers, headerManifestVersion)
	mv, err := parseManifestVersion(manifestVersionRaw)
	if err != nil {
		return nil, err
	}
	b.ManifestVersion = mv

	symbolicNameRaw, _ := headerLookup(headers, headerSymbolicName)
	symbolicName, err := parseSymbolicName(symbolicNameRaw)
	if err != nil {
		return nil, err
	}
	b.SymbolicName = symbolicName

	b.Name, _ = headerLookup(headers, headerName)
	b.Description, _ = headerLookup(headers, headerDescription)

	if raw, ok := headerLookup(headers, headerVersion); ok && raw != "" {
		v, err := version.Parse(raw)
		if err != nil {
			return nil, bundleerr.WrapInvalidBundle(err, "invalid %s", headerVersion)
		}
		b.Version = v
	} else {
		b.Version = version.Default
	}

	if raw, ok := headerLookup(headers, headerFragmentHost); ok && raw != "" {
		fh, err := parseFragmentHost(raw)
		if err != nil {
			return nil, err
		}
		b.FragmentHost = fh
	}

	if raw, ok := headerLookup(headers, headerImportPackage); ok && raw != "" {
		imports, err := parseImportPackage(raw)
		if err != nil {
			return nil, err
		}
		b.ImportedPackages = imports
	}

	if raw, ok := headerLookup(headers, headerExportPackage); ok && raw != "" {
		exports, err := parseExportPackage(raw)
		if err != nil {
			return nil, err
		}
		b.ExportedPackages = exports
	}

	if raw, ok := headerLookup(headers, headerRequireBundle); ok && raw != "" {
		required, err := parseRequireBundle(raw)
		if err != nil {
			return nil, err
		}
		b.RequiredBundles = required
	}

	return b, nil
}

func parseManifestVersion(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, bundleerr.WrapInvalidBundle(err, "invalid %s %q", headerManifestVersion, raw)
	}
	return n, nil
}

func parseSymbolicName(raw string) (string, error) {
	if raw == "" {
		return "", bundleerr.NewInvalidBundle("missing %s", headerSymbolicName)
	}
	clauses := parseClauses(raw)
	if len(clauses) == 0 || len(clauses[0].Tokens) == 0 {
		return "", bundleerr.NewInvalidBundle("missing %s", headerSymbolicName)
	}
	name := clauses[0].Tokens[0].Name
	if name == "" {
		return "", bundleerr.NewInvalidBundle("empty %s", headerSymbolicName)
	}
	return name, nil
}

func parseFragmentHost(raw string) (*FragmentHost, error) {
	clauses := parseClauses(raw)
	if len(clauses) != 1 {
		return nil, bundleerr.NewInvalidBundle("%s must have exactly one clause", headerFragmentHost)
	}
	clause := clauses[0]
	names := clause.Names()
	if len(names) == 0 {
		return nil, bundleerr.NewInvalidBundle("%s is missing a host symbolic name", headerFragmentHost)
	}
	if len(names) > 1 {
		return nil, bundleerr.NewInvalidBundle("%s clause names more than one host", headerFragmentHost)
	}

	fh := &FragmentHost{SymbolicName: names[0], Version: version.DefaultRange}

	if raw, ok := clause.Parameter("bundle-version"); ok {
		r, err := version.ParseRange(raw)
		if err != nil {
			return nil, bundleerr.WrapInvalidBundle(err, "invalid %s bundle-version", headerFragmentHost)
		}
		fh.Version = r
	}

	if ext, ok := clause.Directive("extension"); ok {
		switch strings.ToLower(ext) {
		case "framework":
			fh.Extension = ExtensionFramework
		case "bootclasspath":
			fh.Extension = ExtensionBootClassPath
		default:
			return nil, bundleerr.NewInvalidBundle("invalid %s extension %q", headerFragmentHost, ext)
		}
	}

	return fh, nil
}

var importReservedParams = map[string]struct{}{
	"version":                {},
	"specification-version":  {},
	"bundle-symbolic-name":   {},
	"bundle-version":         {},
}

func parseImportPackage(raw string) ([]ImportedPackage, error) {
	clauses := parseClauses(raw)
	var imports []ImportedPackage
	seen := map[string]struct{}{}

	for _, clause := range clauses {
		names := clause.Names()
		if len(names) == 0 {
			return nil, bundleerr.NewInvalidBundle("%s clause has no package names", headerImportPackage)
		}

		vr, err := importVersionRange(clause, headerImportPackage)
		if err != nil {
			return nil, err
		}

		optional := false
		if res, ok := clause.Directive("resolution"); ok {
			switch strings.ToLower(res) {
			case "optional":
				optional = true
			case "mandatory":
				optional = false
			default:
				return nil, bundleerr.NewInvalidBundle("invalid %s resolution %q", headerImportPackage, res)
			}
		}

		bundleSymbolicName, _ := clause.Parameter("bundle-symbolic-name")

		bundleVersionRange := version.DefaultRange
		if raw, ok := clause.Parameter("bundle-version"); ok {
			r, err := version.ParseRange(raw)
			if err != nil {
				return nil, bundleerr.WrapInvalidBundle(err, "invalid %s bundle-version", headerImportPackage)
			}
			bundleVersionRange = r
		}

		attrs := clause.Attributes(importReservedParams)

		for _, name := range names {
			if _, dup := seen[name]; dup {
				return nil, bundleerr.NewInvalidBundle("duplicate import of package %q", name)
			}
			seen[name] = struct{}{}

			imports = append(imports, ImportedPackage{
				Name:               name,
				Optional:           optional,
				Version:            vr,
				BundleSymbolicName: bundleSymbolicName,
				BundleVersion:      bundleVersionRange,
				MatchingAttributes: attrs,
			})
		}
	}

	return imports, nil
}

var exportReservedDirectives = map[string]struct{}{
	"uses": {}, "mandatory": {}, "include": {}, "exclude": {},
}

var exportReservedParams = map[string]struct{}{
	"version": {}, "specification-version": {},
}

func parseExportPackage(raw string) ([]ExportedPackage, error) {
	clauses := parseClauses(raw)
	var exports []ExportedPackage

	for _, clause := range clauses {
		names := clause.Names()
		if len(names) == 0 {
			return nil, bundleerr.NewInvalidBundle("%s clause has no package names", headerExportPackage)
		}

		v, err := exportVersion(clause, headerExportPackage)
		if err != nil {
			return nil, err
		}

		uses := toSet(clause, "uses")
		mandatory := toSet(clause, "mandatory")
		include := toSet(clause, "include")
		exclude := toSet(clause, "exclude")
		attrs := clause.Attributes(exportReservedParams)

		for _, name := range names {
			exports = append(exports, ExportedPackage{
				Name:                name,
				Version:             v,
				Uses:                uses,
				MandatoryAttributes: mandatory,
				IncludedClasses:     include,
				ExcludedClasses:     exclude,
				MatchingAttributes:  attrs,
			})
		}
	}

	return exports, nil
}

func toSet(clause Clause, directive string) map[string]struct{} {
	raw, ok := clause.Directive(directive)
	if !ok || raw == "" {
		return nil
	}
	set := map[string]struct{}{}
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func parseRequireBundle(raw string) ([]RequiredBundle, error) {
	clauses := parseClauses(raw)
	var required []RequiredBundle

	for _, clause := range clauses {
		names := clause.Names()
		if len(names) == 0 {
			return nil, bundleerr.NewInvalidBundle("%s clause has no bundle name", headerRequireBundle)
		}
		if len(names) > 1 {
			return nil, bundleerr.NewInvalidBundle("%s clause names more than one bundle", headerRequireBundle)
		}

		rb := RequiredBundle{SymbolicName: names[0], Version: version.DefaultRange}

		if raw, ok := clause.Parameter("bundle-version"); ok {
			r, err := version.ParseRange(raw)
			if err != nil {
				return nil, bundleerr.WrapInvalidBundle(err, "invalid %s bundle-version", headerRequireBundle)
			}
			rb.Version = r
		}

		if res, ok := clause.Directive("resolution"); ok {
			switch strings.ToLower(res) {
			case "optional":
				rb.Optional = true
			case "mandatory":
				rb.Optional = false
			default:
				return nil, bundleerr.NewInvalidBundle("invalid %s resolution %q", headerRequireBundle, res)
			}
		}

		if vis, ok := clause.Directive("visibility"); ok {
			switch strings.ToLower(vis) {
			case "reexport":
				rb.Reexport = true
			case "private":
				rb.Reexport = false
			default:
				return nil, bundleerr.NewInvalidBundle("invalid %s visibility %q", headerRequireBundle, vis)
			}
		}

		required = append(required, rb)
	}

	return required, nil
}

// importVersionRange and exportVersion both enforce the version /
// specification-version equality rule shared by Import-Package and
// Export-Package.
func importVersionRange(clause Clause, header string) (version.VersionRange, error) {
	vr, spec, err := versionAndSpec(clause, header)
	if err != nil {
		return version.VersionRange{}, err
	}
	if vr == "" && spec == "" {
		return version.DefaultRange, nil
	}
	raw := vr
	if raw == "" {
		raw = spec
	}
	r, err := version.ParseRange(raw)
	if err != nil {
		return version.VersionRange{}, bundleerr.WrapInvalidBundle(err, "invalid %s version", header)
	}
	return r, nil
}

func exportVersion(clause Clause, header string) (version.Version, error) {
	vr, spec, err := versionAndSpec(clause, header)
	if err != nil {
		return version.Version{}, err
	}
	if vr == "" && spec == "" {
		return version.Default, nil
	}
	raw := vr
	if raw == "" {
		raw = spec
	}
	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, bundleerr.WrapInvalidBundle(err, "invalid %s version", header)
	}
	return v, nil
}

func versionAndSpec(clause Clause, header string) (versionParam, specParam string, err error) {
	versionParam, _ = clause.Parameter("version")
	specParam, _ = clause.Parameter("specification-version")
	if versionParam != "" && specParam != "" && versionParam != specParam {
		return "", "", bundleerr.NewInvalidBundle(
			"%s: version %q and specification-version %q disagree", header, versionParam, specParam)
	}
	return versionParam, specParam, nil
}
