package deskforge

import (
	"context"
	"time"
)

// OperationResult is the outcome of a single package-manager operation,
// including how many attempts the retry loop used.
type OperationResult struct {
	Succeeded bool
	Attempts  int
	LastError error
}

func opSuccess(attempts int) OperationResult {
	return OperationResult{Succeeded: true, Attempts: attempts}
}

func opFailure(attempts int, err error) OperationResult {
	return OperationResult{Attempts: attempts, LastError: err}
}

// PackageManager wraps the two supported backends behind one interface.
// Install failures are surfaced, never retried here; callers decide what is
// fatal. EnableService and Cleanup are best-effort at every call site.
type PackageManager interface {
	Kind() PkgManagerKind
	RefreshIndex(ctx context.Context) OperationResult
	Install(ctx context.Context, pkgs []string) OperationResult
	EnableService(ctx context.Context, name string) OperationResult
	Cleanup(ctx context.Context) OperationResult
}

// newPackageManager selects the backend implementation for the detected
// environment.
func newPackageManager(env Environment, runner commandRunner) PackageManager {
	switch env.PkgManager {
	case PkgManagerPacman:
		return newPacmanManager(runner)
	default:
		return newAptManager(runner)
	}
}

// withRetry runs op up to attempts times with a fixed backoff between tries.
// Only the index refresh on the apt backend uses more than one attempt; the
// retry budget exists for transient network failures, nothing else.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, op func() error) OperationResult {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return opFailure(i-1, err)
		}
		if lastErr = op(); lastErr == nil {
			return opSuccess(i)
		}
		if i < attempts {
			logWarnf("Attempt %d/%d failed: %v. Retrying in %s", i, attempts, lastErr, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return opFailure(i, ctx.Err())
			}
		}
	}
	return opFailure(attempts, lastErr)
}
