// Package osgibundle maintains an in-memory registry of OSGi R4 bundles
// and resolves their Require-Bundle, Import-Package, and Fragment-Host
// dependencies against each other. Manifest text is parsed by the
// manifest subpackage; this package indexes the resulting BundleInfo
// values and answers dependency queries, computes transitive closures
// with cycle detection, and tracks each bundle's resolve state.
package osgibundle
