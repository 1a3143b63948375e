package deskforge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPackageSets(t *testing.T) {
	sets := defaultPackageSets()

	assert.NotEmpty(t, sets.Get("common", PkgManagerApt))
	assert.NotEmpty(t, sets.Get("common", PkgManagerPacman))
	assert.Equal(t, []string{"gdm3"}, sets.Get("gdm", PkgManagerApt))
	assert.Equal(t, []string{"gdm"}, sets.Get("gdm", PkgManagerPacman))
	assert.Nil(t, sets.Get("cinnamon", PkgManagerApt), "unknown set is empty")
}

func TestLoadPackageSetsMissingFile(t *testing.T) {
	sets, err := loadPackageSets(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPackageSets().Get("kde", PkgManagerApt), sets.Get("kde", PkgManagerApt))
}

func TestLoadPackageSetsOverrideMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkgsets.yaml")
	override := `kde:
  apt: [kde-plasma-desktop, plasma-nm]
extras:
  pacman: [firefox]
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	sets, err := loadPackageSets(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"kde-plasma-desktop", "plasma-nm"}, sets.Get("kde", PkgManagerApt))
	// Untouched kinds and sets keep their defaults.
	assert.Equal(t, defaultPackageSets().Get("kde", PkgManagerPacman), sets.Get("kde", PkgManagerPacman))
	assert.Equal(t, defaultPackageSets().Get("xfce", PkgManagerApt), sets.Get("xfce", PkgManagerApt))
	// New sets are allowed.
	assert.Equal(t, []string{"firefox"}, sets.Get("extras", PkgManagerPacman))
}

func TestLoadPackageSetsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkgsets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::\n\t"), 0o644))

	_, err := loadPackageSets(path)
	assert.Error(t, err, "a malformed override must not silently fall back")
}

func TestMissingOnly(t *testing.T) {
	installed := pathSet{"gum": true}
	got := missingOnly([]string{"gum", "figlet"}, installed.lookPath)
	assert.Equal(t, []string{"figlet"}, got)

	assert.Nil(t, missingOnly([]string{"gum"}, installed.lookPath))
	assert.Nil(t, missingOnly(nil, installed.lookPath))
}
