package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc := "packages:\n  - javax.mail\n  - javax.ssl\nextra:\n  - com.acme.ext\n"
	s, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"javax.mail", "javax.ssl"}, s.Packages)
	assert.Equal(t, "javax.mail,javax.ssl", s.PackagesValue())
	assert.Equal(t, "com.acme.ext", s.ExtraValue())
}

func TestLoadEmpty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "", s.PackagesValue())
	assert.Equal(t, "", s.ExtraValue())
}
