package deskforge

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// fakeRunner records every command it is asked to run and fails according to
// the configured hook.
type fakeRunner struct {
	calls []string
	fail  func(argv []string) error
}

func (f *fakeRunner) Run(cmd *exec.Cmd) error {
	f.calls = append(f.calls, strings.Join(cmd.Args, " "))
	if f.fail != nil {
		return f.fail(cmd.Args)
	}
	return nil
}

// fakePM records package-manager operations for pipeline and negotiation
// tests.
type fakePM struct {
	kind PkgManagerKind

	refreshErr error
	installErr func(pkgs []string) error
	enableErr  error
	cleanupErr error

	refreshes int
	installs  [][]string
	enables   []string
	cleanups  int

	onInstall func(pkgs []string)
}

func (f *fakePM) Kind() PkgManagerKind { return f.kind }

func (f *fakePM) RefreshIndex(ctx context.Context) OperationResult {
	f.refreshes++
	if f.refreshErr != nil {
		return opFailure(6, f.refreshErr)
	}
	return opSuccess(1)
}

func (f *fakePM) Install(ctx context.Context, pkgs []string) OperationResult {
	f.installs = append(f.installs, pkgs)
	if len(pkgs) == 0 {
		return opSuccess(0)
	}
	if f.onInstall != nil {
		f.onInstall(pkgs)
	}
	if f.installErr != nil {
		if err := f.installErr(pkgs); err != nil {
			return opFailure(1, err)
		}
	}
	return opSuccess(1)
}

func (f *fakePM) EnableService(ctx context.Context, name string) OperationResult {
	f.enables = append(f.enables, name)
	if f.enableErr != nil {
		return opFailure(1, f.enableErr)
	}
	return opSuccess(1)
}

func (f *fakePM) Cleanup(ctx context.Context) OperationResult {
	f.cleanups++
	if f.cleanupErr != nil {
		return opFailure(1, f.cleanupErr)
	}
	return opSuccess(1)
}

// nonEmptyInstalls filters out the defined no-op calls.
func (f *fakePM) nonEmptyInstalls() [][]string {
	var out [][]string
	for _, pkgs := range f.installs {
		if len(pkgs) > 0 {
			out = append(out, pkgs)
		}
	}
	return out
}

// fakeUI answers every Choose with a scripted label and counts banners.
type fakeUI struct {
	backend   UIBackend
	answers   []string
	chooseErr error
	choices   int
	banners   []string
}

func (f *fakeUI) Backend() UIBackend { return f.backend }

func (f *fakeUI) Confirm(ctx context.Context, prompt string, def bool) bool { return def }

func (f *fakeUI) Choose(ctx context.Context, title string, options []string) (string, error) {
	defer func() { f.choices++ }()
	if f.chooseErr != nil {
		return "", f.chooseErr
	}
	if f.choices < len(f.answers) {
		return f.answers[f.choices], nil
	}
	return options[0], nil
}

func (f *fakeUI) Banner(ctx context.Context, text string) {
	f.banners = append(f.banners, text)
}

// pathSet builds a lookPath fake over a mutable set of installed binaries.
type pathSet map[string]bool

func (s pathSet) lookPath(name string) (string, error) {
	if s[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}
