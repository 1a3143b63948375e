package deskforge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryStopsOnFirstSuccess(t *testing.T) {
	for k := 1; k <= 6; k++ {
		calls := 0
		res := withRetry(context.Background(), 6, time.Millisecond, func() error {
			calls++
			if calls < k {
				return errors.New("transient")
			}
			return nil
		})
		require.True(t, res.Succeeded, "attempt %d", k)
		assert.Equal(t, k, res.Attempts)
		assert.Equal(t, k, calls, "must not retry after success")
		assert.NoError(t, res.LastError)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	res := withRetry(context.Background(), 6, time.Millisecond, func() error {
		calls++
		return errors.New("network down")
	})
	require.False(t, res.Succeeded)
	assert.Equal(t, 6, res.Attempts)
	assert.Equal(t, 6, calls)
	assert.EqualError(t, res.LastError, "network down")
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	res := withRetry(ctx, 6, time.Millisecond, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.False(t, res.Succeeded)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, res.LastError, context.Canceled)
}

func TestAptRefreshRetriesUpToBound(t *testing.T) {
	runner := &fakeRunner{fail: func([]string) error { return errors.New("mirror unreachable") }}
	mgr := newAptManager(runner)
	mgr.backoff = time.Millisecond

	res := mgr.RefreshIndex(context.Background())
	require.False(t, res.Succeeded)
	assert.Equal(t, 6, res.Attempts)
	require.Len(t, runner.calls, 6)
	for _, call := range runner.calls {
		assert.Equal(t, "apt-get update", call)
	}
}

func TestAptRefreshSucceedsMidway(t *testing.T) {
	attempt := 0
	runner := &fakeRunner{fail: func([]string) error {
		attempt++
		if attempt < 3 {
			return errors.New("mirror unreachable")
		}
		return nil
	}}
	mgr := newAptManager(runner)
	mgr.backoff = time.Millisecond

	res := mgr.RefreshIndex(context.Background())
	require.True(t, res.Succeeded)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, runner.calls, 3)
}

func TestAptInstallEmptyIsNoOp(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newAptManager(runner)

	res := mgr.Install(context.Background(), nil)
	require.True(t, res.Succeeded)
	assert.Zero(t, res.Attempts)
	assert.Empty(t, runner.calls, "empty install must not invoke the backend")
}

func TestAptInstallNonInteractive(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newAptManager(runner)

	res := mgr.Install(context.Background(), []string{"xfce4", "xfce4-goodies"})
	require.True(t, res.Succeeded)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "apt-get install -y xfce4 xfce4-goodies", runner.calls[0])
}

func TestAptInstallFailureSurfaced(t *testing.T) {
	runner := &fakeRunner{fail: func([]string) error { return errors.New("unmet dependencies") }}
	mgr := newAptManager(runner)

	res := mgr.Install(context.Background(), []string{"gum"})
	require.False(t, res.Succeeded)
	assert.Equal(t, 1, res.Attempts, "install is never retried")
	assert.ErrorContains(t, res.LastError, "unmet dependencies")
}

func TestPacmanRefreshSingleAttempt(t *testing.T) {
	runner := &fakeRunner{fail: func([]string) error { return errors.New("mirror unreachable") }}
	mgr := newPacmanManager(runner)

	res := mgr.RefreshIndex(context.Background())
	require.False(t, res.Succeeded)
	assert.Equal(t, 1, res.Attempts, "pacman refresh has no retry loop")
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pacman -Syu --noconfirm", runner.calls[0])
}

func TestPacmanInstallEmptyIsNoOp(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newPacmanManager(runner)

	res := mgr.Install(context.Background(), nil)
	require.True(t, res.Succeeded)
	assert.Empty(t, runner.calls)
}

func TestPacmanInstallUsesNeeded(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newPacmanManager(runner)

	res := mgr.Install(context.Background(), []string{"plasma-desktop"})
	require.True(t, res.Succeeded)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pacman -S --needed --noconfirm plasma-desktop", runner.calls[0])
}

func TestEnableServiceCommands(t *testing.T) {
	for _, mk := range []func(commandRunner) PackageManager{
		func(r commandRunner) PackageManager { return newAptManager(r) },
		func(r commandRunner) PackageManager { return newPacmanManager(r) },
	} {
		runner := &fakeRunner{}
		mgr := mk(runner)

		res := mgr.EnableService(context.Background(), "sddm.service")
		require.True(t, res.Succeeded)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, "systemctl enable sddm.service", runner.calls[0])
	}
}

func TestPacmanCleanupRemovesOrphans(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newPacmanManager(runner)

	res := mgr.Cleanup(context.Background())
	require.True(t, res.Succeeded)
	// Orphan listing first, then cache clean. No orphans were reported, so no
	// removal call in between.
	require.Len(t, runner.calls, 2)
	assert.Equal(t, "pacman -Qtdq", runner.calls[0])
	assert.Equal(t, "pacman -Sc --noconfirm", runner.calls[1])
}

func TestAptCleanupBestEffortCommands(t *testing.T) {
	runner := &fakeRunner{}
	mgr := newAptManager(runner)

	res := mgr.Cleanup(context.Background())
	require.True(t, res.Succeeded)
	require.Len(t, runner.calls, 2)
	assert.True(t, strings.HasPrefix(runner.calls[0], "apt-get autoremove"))
	assert.Equal(t, "apt-get clean", runner.calls[1])
}

func TestNewPackageManagerSelectsBackend(t *testing.T) {
	runner := &fakeRunner{}
	assert.Equal(t, PkgManagerApt, newPackageManager(Environment{PkgManager: PkgManagerApt}, runner).Kind())
	assert.Equal(t, PkgManagerPacman, newPackageManager(Environment{PkgManager: PkgManagerPacman}, runner).Kind())
}
