package deskforge

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const rebootDelay = 5 * time.Second

// pipeline is the fixed-order installation state machine. Steps run strictly
// one after another; the only branching is the documented skip rules and the
// best-effort handling of service enablement and cleanup.
type pipeline struct {
	env  Environment
	mgr  PackageManager
	ui   UI
	sel  Selection
	sets *PackageSets

	lookPath func(string) (string, error)
	sleep    func(time.Duration)
	reboot   func(ctx context.Context) error
}

func newPipeline(env Environment, mgr PackageManager, ui UI, sel Selection, sets *PackageSets, runner commandRunner) *pipeline {
	p := &pipeline{
		env:      env,
		mgr:      mgr,
		ui:       ui,
		sel:      sel,
		sets:     sets,
		lookPath: exec.LookPath,
		sleep:    time.Sleep,
	}
	p.reboot = func(ctx context.Context) error {
		return runner.Run(exec.CommandContext(ctx, "reboot"))
	}
	return p
}

// Run executes the pipeline. Any returned error is fatal to the run; the
// best-effort steps log warnings instead of returning.
func (p *pipeline) Run(ctx context.Context) error {
	kind := p.env.PkgManager

	if res := p.mgr.RefreshIndex(ctx); !res.Succeeded {
		return fmt.Errorf("package index refresh failed after %d attempt(s): %w",
			res.Attempts, res.LastError)
	}

	if res := p.mgr.Install(ctx, p.sets.Get("common", kind)); !res.Succeeded {
		return fmt.Errorf("installing common packages: %w", res.LastError)
	}

	// Visuals are filtered by presence so re-running the step stays a no-op.
	visuals := missingOnly(p.sets.Get("visual", kind), p.lookPath)
	if res := p.mgr.Install(ctx, visuals); !res.Succeeded {
		return fmt.Errorf("installing visual packages: %w", res.LastError)
	}

	if p.sel.Desktop == DesktopMinimal {
		logInfof("Minimal selection: skipping desktop environment packages")
	} else {
		if res := p.mgr.Install(ctx, p.sets.Get(p.sel.Desktop.String(), kind)); !res.Succeeded {
			return fmt.Errorf("installing %s: %w", p.sel.Desktop, res.LastError)
		}
	}

	if p.sel.DisplayManager == DMNone {
		logInfof("No display manager selected: skipping install and enable")
	} else {
		if res := p.mgr.Install(ctx, p.sets.Get(p.sel.DisplayManager.String(), kind)); !res.Succeeded {
			return fmt.Errorf("installing %s: %w", p.sel.DisplayManager, res.LastError)
		}
		svc := p.sel.DisplayManager.serviceName()
		if res := p.mgr.EnableService(ctx, svc); !res.Succeeded {
			// A disabled display manager degrades the result, it must not
			// stop finalization.
			logWarnf("Could not enable %s: %v", svc, res.LastError)
		} else {
			logInfof("Enabled %s", svc)
		}
	}

	if res := p.mgr.Cleanup(ctx); !res.Succeeded {
		logWarnf("Cleanup failed: %v", res.LastError)
	}

	p.ui.Banner(ctx, "Provisioning complete")
	logInfof("Rebooting in %s", rebootDelay)
	p.sleep(rebootDelay)

	if err := p.reboot(ctx); err != nil {
		return fmt.Errorf("reboot failed: %w", err)
	}
	return nil
}
