package deskforge

import (
	"context"
	"os/exec"
)

// negotiator resolves the UI backend used for the rest of the run. It never
// fails the run: the worst outcome is BackendNone, after which every choice
// degrades to its default.
//
// States: probing -> offering upgrade -> installing -> resolved. The upgrade
// is only offered when gum is absent; declining it, or any install failure,
// just skips to resolution with whatever is already present.
type negotiator struct {
	mgr         PackageManager
	runner      commandRunner
	lookPath    func(string) (string, error)
	interactive bool
	fetchGum    func(context.Context) error
}

func newNegotiator(mgr PackageManager, runner commandRunner, interactive bool) *negotiator {
	return &negotiator{
		mgr:         mgr,
		runner:      runner,
		lookPath:    exec.LookPath,
		interactive: interactive,
		fetchGum:    downloadGumBinary,
	}
}

// Resolve runs the negotiation and freezes the backend.
func (n *negotiator) Resolve(ctx context.Context) UIBackend {
	present := probeBackend(n.lookPath)
	if present == BackendGum {
		logInfof("UI backend: gum")
		return BackendGum
	}

	if n.offerUpgrade(ctx) {
		n.installGum(ctx)
	}

	// Re-probe in the same preference order; the upgrade may or may not have
	// taken.
	resolved := probeBackend(n.lookPath)
	logInfof("UI backend: %s", resolved)
	return resolved
}

// offerUpgrade decides whether to attempt installing gum. Non-interactive
// runs attempt it silently; interactive runs ask through whatever fallback is
// already available. Declining is a normal path, not an error.
func (n *negotiator) offerUpgrade(ctx context.Context) bool {
	if !n.interactive {
		return true
	}
	const question = "Install gum for a nicer setup experience?"
	if _, err := n.lookPath("whiptail"); err == nil {
		return (&whiptailUI{runner: n.runner}).Confirm(ctx, question, true)
	}
	return askForConfirmation(colNote, "%s", question)
}

// installGum tries the package manager first, then (apt only) snap, then the
// binary download. Every failure is best-effort: it only means the richer
// backend is skipped.
func (n *negotiator) installGum(ctx context.Context) {
	if res := n.mgr.Install(ctx, []string{"gum"}); res.Succeeded {
		return
	}
	logWarnf("gum is not available from the %s repositories", n.mgr.Kind())

	if n.mgr.Kind() != PkgManagerApt {
		return
	}

	if _, err := n.lookPath("snap"); err == nil {
		if err := n.runner.Run(exec.CommandContext(ctx, "snap", "install", "gum")); err == nil {
			return
		}
		logWarnf("snap install gum failed")
	}

	logInfof("Falling back to the gum release download")
	if err := n.fetchGum(ctx); err != nil {
		logWarnf("gum binary download failed: %v", err)
	}
}
