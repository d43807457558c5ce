// Package observability provides hooks for progress reporting and metrics.
//
// The batch emits events through a small hooks interface instead of
// depending on any particular display or metrics backend. The CLI registers
// a hook that drives its progress bar; library users may register their own.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBatchHooks(&myBatchHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Batch().OnIndexStart(ctx, index)
//	// ... generate and save ...
//	observability.Batch().OnIndexComplete(ctx, index, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Batch Hooks
// =============================================================================

// BatchHooks receives events from the batch driver. Implementations must be
// safe for concurrent use when the batch runs with more than one worker.
type BatchHooks interface {
	// Run events
	OnBatchStart(ctx context.Context, runID string, total int)
	OnBatchComplete(ctx context.Context, runID string, written int, duration time.Duration, err error)

	// Per-index events
	OnIndexStart(ctx context.Context, index int)
	OnIndexComplete(ctx context.Context, index int, duration time.Duration, err error)

	// OnSave records one persisted output.
	OnSave(ctx context.Context, index int, category, path string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopBatchHooks is a no-op implementation of BatchHooks.
type NoopBatchHooks struct{}

func (NoopBatchHooks) OnBatchStart(context.Context, string, int)                          {}
func (NoopBatchHooks) OnBatchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopBatchHooks) OnIndexStart(context.Context, int)                                  {}
func (NoopBatchHooks) OnIndexComplete(context.Context, int, time.Duration, error)         {}
func (NoopBatchHooks) OnSave(context.Context, int, string, string, time.Duration, error)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	batchHooks BatchHooks = NoopBatchHooks{}
	hooksMu    sync.RWMutex
)

// SetBatchHooks registers custom batch hooks.
// This should be called once at application startup before any batch runs.
func SetBatchHooks(h BatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		batchHooks = h
	}
}

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return batchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	batchHooks = NoopBatchHooks{}
}
