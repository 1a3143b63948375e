package deskforge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PkgsetFile optionally overrides individual package sets per manager kind.
const PkgsetFile = "/etc/deskforge/pkgsets.yaml"

// PackageSets holds the named, ordered package collections keyed by package
// manager kind. Loaded once, never mutated afterwards.
type PackageSets struct {
	sets map[string]map[string][]string
}

// defaultPackageSets returns the compiled-in tables.
func defaultPackageSets() *PackageSets {
	return &PackageSets{sets: map[string]map[string][]string{
		"common": {
			"apt":    {"xorg", "xdg-utils", "network-manager", "pipewire", "fonts-dejavu"},
			"pacman": {"xorg", "xdg-utils", "networkmanager", "pipewire", "ttf-dejavu"},
		},
		"visual": {
			"apt":    {"gum", "figlet"},
			"pacman": {"gum", "figlet"},
		},
		"kde": {
			"apt":    {"kde-plasma-desktop", "konsole", "dolphin"},
			"pacman": {"plasma-desktop", "konsole", "dolphin"},
		},
		"gnome": {
			"apt":    {"gnome-shell", "gnome-terminal", "nautilus"},
			"pacman": {"gnome", "gnome-terminal"},
		},
		"xfce": {
			"apt":    {"xfce4", "xfce4-goodies"},
			"pacman": {"xfce4", "xfce4-goodies"},
		},
		"sddm": {
			"apt":    {"sddm"},
			"pacman": {"sddm"},
		},
		"gdm": {
			"apt":    {"gdm3"},
			"pacman": {"gdm"},
		},
	}}
}

// loadPackageSets returns the defaults with any override file merged on top.
// A missing override file is the normal case; a malformed one is an error so
// a typo cannot silently install the wrong set.
func loadPackageSets(path string) (*PackageSets, error) {
	ps := defaultPackageSets()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ps, nil
		}
		return nil, err
	}

	var override map[string]map[string][]string
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for set, byKind := range override {
		if ps.sets[set] == nil {
			ps.sets[set] = make(map[string][]string)
		}
		for kind, pkgs := range byKind {
			ps.sets[set][kind] = pkgs
		}
	}
	debugf("Merged package set overrides from %s\n", path)
	return ps, nil
}

// Get returns the packages of a named set for the given manager kind. An
// unknown set is empty, which install treats as a no-op.
func (ps *PackageSets) Get(name string, kind PkgManagerKind) []string {
	return ps.sets[name][kind.String()]
}

// missingOnly filters out packages whose command of the same name is already
// on PATH. Used for the visual set, where package and binary names coincide,
// to keep that step idempotent.
func missingOnly(pkgs []string, lookPath func(string) (string, error)) []string {
	var missing []string
	for _, p := range pkgs {
		if _, err := lookPath(p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}
