package deskforge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	aptRefreshAttempts = 6
	aptRefreshBackoff  = 2 * time.Second
)

// aptManager drives apt-get. Index refresh is the one genuinely
// network-flaky operation, so only it carries a retry budget.
type aptManager struct {
	runner   commandRunner
	attempts int
	backoff  time.Duration
}

func newAptManager(runner commandRunner) *aptManager {
	return &aptManager{
		runner:   runner,
		attempts: aptRefreshAttempts,
		backoff:  aptRefreshBackoff,
	}
}

func (m *aptManager) Kind() PkgManagerKind { return PkgManagerApt }

func (m *aptManager) aptCmd(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "apt-get", args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	return cmd
}

func (m *aptManager) RefreshIndex(ctx context.Context) OperationResult {
	logInfof("Refreshing package index")
	return withRetry(ctx, m.attempts, m.backoff, func() error {
		return m.runner.Run(m.aptCmd(ctx, "update"))
	})
}

func (m *aptManager) Install(ctx context.Context, pkgs []string) OperationResult {
	if len(pkgs) == 0 {
		// Empty input is a defined no-op, not an error.
		return opSuccess(0)
	}
	logInfof("Installing: %s", strings.Join(pkgs, " "))

	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	args := append([]string{"install", "-y"}, pkgs...)
	err := runWithSpinner("Installing packages", func() error {
		return m.runner.Run(m.aptCmd(ctx, args...))
	})
	if err != nil {
		return opFailure(1, fmt.Errorf("apt-get install failed: %w", err))
	}
	return opSuccess(1)
}

func (m *aptManager) EnableService(ctx context.Context, name string) OperationResult {
	if err := m.runner.Run(exec.CommandContext(ctx, "systemctl", "enable", name)); err != nil {
		return opFailure(1, fmt.Errorf("systemctl enable %s failed: %w", name, err))
	}
	return opSuccess(1)
}

func (m *aptManager) Cleanup(ctx context.Context) OperationResult {
	if err := m.runner.Run(m.aptCmd(ctx, "autoremove", "-y")); err != nil {
		return opFailure(1, fmt.Errorf("apt-get autoremove failed: %w", err))
	}
	if err := m.runner.Run(m.aptCmd(ctx, "clean")); err != nil {
		return opFailure(1, fmt.Errorf("apt-get clean failed: %w", err))
	}
	return opSuccess(1)
}
