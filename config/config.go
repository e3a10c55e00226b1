// Package config decodes the caller-supplied system-bundle package lists
// used to seed a registry. It never touches the filesystem: the caller
// reads the configuration text from wherever it lives and hands this
// package a reader.
package config

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SystemPackages holds the two configured package lists a registry is
// seeded with: the platform's baseline packages and any extra packages
// layered on top, mirroring the OSGi properties system.packages and
// system.packages.extra.
type SystemPackages struct {
	Packages []string `yaml:"packages"`
	Extra    []string `yaml:"extra"`
}

// Load decodes a SystemPackages document from r.
func Load(r io.Reader) (SystemPackages, error) {
	var s SystemPackages
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return SystemPackages{}, errors.Wrap(err, "decoding system packages config")
	}
	return s, nil
}

// PackagesValue returns Packages as the comma-joined string a registry
// constructor expects for systemPackages.
func (s SystemPackages) PackagesValue() string {
	return strings.Join(s.Packages, ",")
}

// ExtraValue returns Extra as the comma-joined string a registry
// constructor expects for systemPackagesExtra.
func (s SystemPackages) ExtraValue() string {
	return strings.Join(s.Extra, ",")
}
