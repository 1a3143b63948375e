package deskforge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// pacmanManager drives pacman. Refresh is combined with the full system
// upgrade (-Syu) and attempted exactly once: a partial upgrade left behind by
// blind retries is worse on Arch than a clean failure.
type pacmanManager struct {
	runner commandRunner
}

func newPacmanManager(runner commandRunner) *pacmanManager {
	return &pacmanManager{runner: runner}
}

func (m *pacmanManager) Kind() PkgManagerKind { return PkgManagerPacman }

func (m *pacmanManager) RefreshIndex(ctx context.Context) OperationResult {
	logInfof("Refreshing package index and upgrading system")
	if err := m.runner.Run(exec.CommandContext(ctx, "pacman", "-Syu", "--noconfirm")); err != nil {
		return opFailure(1, fmt.Errorf("pacman -Syu failed: %w", err))
	}
	return opSuccess(1)
}

func (m *pacmanManager) Install(ctx context.Context, pkgs []string) OperationResult {
	if len(pkgs) == 0 {
		return opSuccess(0)
	}
	logInfof("Installing: %s", strings.Join(pkgs, " "))

	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	err := runWithSpinner("Installing packages", func() error {
		return m.runner.Run(exec.CommandContext(ctx, "pacman", args...))
	})
	if err != nil {
		return opFailure(1, fmt.Errorf("pacman -S failed: %w", err))
	}
	return opSuccess(1)
}

func (m *pacmanManager) EnableService(ctx context.Context, name string) OperationResult {
	if err := m.runner.Run(exec.CommandContext(ctx, "systemctl", "enable", name)); err != nil {
		return opFailure(1, fmt.Errorf("systemctl enable %s failed: %w", name, err))
	}
	return opSuccess(1)
}

func (m *pacmanManager) Cleanup(ctx context.Context) OperationResult {
	// Orphan listing is advisory; no orphans is a normal pacman -Qtdq failure.
	var orphans bytes.Buffer
	listCmd := exec.CommandContext(ctx, "pacman", "-Qtdq")
	listCmd.Stdout = &orphans
	if err := m.runner.Run(listCmd); err == nil {
		names := strings.Fields(orphans.String())
		if len(names) > 0 {
			args := append([]string{"-Rns", "--noconfirm"}, names...)
			if err := m.runner.Run(exec.CommandContext(ctx, "pacman", args...)); err != nil {
				return opFailure(1, fmt.Errorf("orphan removal failed: %w", err))
			}
		}
	}
	if err := m.runner.Run(exec.CommandContext(ctx, "pacman", "-Sc", "--noconfirm")); err != nil {
		return opFailure(1, fmt.Errorf("pacman -Sc failed: %w", err))
	}
	return opSuccess(1)
}
