package osgibundle

import (
	"reflect"

	"github.com/vireo-dev/osgibundle/manifest"
)

// bundleInfoEqual reports structural equality of two parsed bundles.
// Identity in the registry is by deep structural equality of the parsed
// manifest, not by pointer -- two independently parsed copies of the same
// manifest text are the same bundle.
func bundleInfoEqual(a, b *manifest.BundleInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(*a, *b)
}
