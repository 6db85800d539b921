package analyzer

import (
	"context"
	"os"
	"time"

	"depscope/internal/cache"
	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/telemetry"
	"depscope/internal/worker"
)

// resolveFiles resolves every definition file through the pool. Each task
// writes only its own preallocated result slot, so output order follows the
// input file order regardless of completion order. Cancellation stops
// scheduling; tasks already submitted run to completion.
func resolveFiles(ctx context.Context, manager plugin.PackageManager, files []string, pool *worker.Pool, store *cache.Store) []model.FileResult {
	results := make([]model.FileResult, len(files))

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		i, file := i, file
		pool.Submit(func(workerID int) error {
			results[i] = resolveOne(ctx, manager, file, store)
			return nil
		})
	}
	pool.Wait()

	return results
}

// resolveOne resolves a single file, consulting the cache when enabled. A
// failure never propagates: it becomes a synthetic result carrying an ERROR
// issue for just that file.
func resolveOne(ctx context.Context, manager plugin.PackageManager, file string, store *cache.Store) model.FileResult {
	begin := time.Now()

	result, hit, err := cachedResolve(ctx, manager, file, store)
	telemetry.ObserveResolutionDuration(manager.Name(), time.Since(begin).Seconds())
	telemetry.TrackResolution(manager.Name(), err == nil)
	if err != nil {
		telemetry.LogError("Definition file resolution failed", err, "manager", manager.Name(), "file", file)
		return model.FailedFileResult(manager.Name(), file, err)
	}
	if hit {
		telemetry.LogDebug("Resolution served from cache", "manager", manager.Name(), "file", file)
	}
	return result
}

func cachedResolve(ctx context.Context, manager plugin.PackageManager, file string, store *cache.Store) (model.FileResult, bool, error) {
	if store == nil {
		result, err := manager.ResolveFile(ctx, file)
		return result, false, err
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return model.FileResult{}, false, err
	}

	result, hit, err := store.Resolve(manager.Name(), file, cache.HashContent(content), func() (model.FileResult, error) {
		return manager.ResolveFile(ctx, file)
	})
	if hit {
		telemetry.TrackCacheHit()
	} else if err == nil {
		telemetry.TrackCacheMiss()
	}
	return result, hit, err
}
