package deskforge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// PkgManagerKind identifies which of the two supported package managers
// drives the run.
type PkgManagerKind int

const (
	PkgManagerApt PkgManagerKind = iota
	PkgManagerPacman
)

func (k PkgManagerKind) String() string {
	switch k {
	case PkgManagerApt:
		return "apt"
	case PkgManagerPacman:
		return "pacman"
	}
	return "unknown"
}

// Environment describes the host platform. It is built once at startup and
// never mutated afterwards.
type Environment struct {
	DistroID      string
	DistroName    string
	DistroVersion string
	PkgManager    PkgManagerKind
}

// parseOSRelease extracts the fields we care about from os-release data.
func parseOSRelease(r io.Reader) (id, name, version string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val = strings.Trim(val, `"'`)
		switch key {
		case "ID":
			id = val
		case "NAME":
			name = val
		case "VERSION_ID":
			version = val
		}
	}
	return id, name, version
}

func readOSRelease() (id, name, version string) {
	for _, path := range []string{"/etc/os-release", "/usr/lib/os-release"} {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		id, name, version = parseOSRelease(f)
		f.Close()
		return id, name, version
	}
	return "", "", ""
}

// pickPkgManager probes for a supported package manager in preference order.
func pickPkgManager(lookPath func(string) (string, error)) (PkgManagerKind, error) {
	if _, err := lookPath("apt-get"); err == nil {
		return PkgManagerApt, nil
	}
	if _, err := lookPath("pacman"); err == nil {
		return PkgManagerPacman, nil
	}
	return 0, fmt.Errorf("no supported package manager found (need apt-get or pacman)")
}

// detectEnvironment probes the platform once. It is a pure local probe; a
// missing package manager is fatal to the whole run.
func detectEnvironment() (Environment, error) {
	id, name, version := readOSRelease()

	kind, err := pickPkgManager(exec.LookPath)
	if err != nil {
		return Environment{}, err
	}

	env := Environment{
		DistroID:      id,
		DistroName:    name,
		DistroVersion: version,
		PkgManager:    kind,
	}

	var uts unix.Utsname
	kernel := "unknown"
	machine := arch
	if err := unix.Uname(&uts); err == nil {
		kernel = unix.ByteSliceToString(uts.Release[:])
		machine = unix.ByteSliceToString(uts.Machine[:])
	}
	logInfof("Detected %s %s (%s), kernel %s %s, package manager: %s",
		env.DistroName, env.DistroVersion, env.DistroID, kernel, machine, env.PkgManager)

	return env, nil
}
