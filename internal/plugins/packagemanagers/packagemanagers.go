// Package packagemanagers hosts the shared per-file resolution helper the
// in-tree package manager plugins build their batch entry points on.
package packagemanagers

import (
	"context"

	"depscope/internal/model"
)

// FileResolver is the per-file part of a package manager.
type FileResolver interface {
	Name() string
	ResolveFile(ctx context.Context, definitionFile string) (model.FileResult, error)
}

// ResolveAll resolves the given files in order, converting each file's
// failure into a synthetic result so one bad manifest never fails the batch.
// It returns an error only when the context is cancelled.
func ResolveAll(ctx context.Context, r FileResolver, definitionFiles []string) (map[string]model.FileResult, error) {
	results := make(map[string]model.FileResult, len(definitionFiles))
	for _, file := range definitionFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := r.ResolveFile(ctx, file)
		if err != nil {
			result = model.FailedFileResult(r.Name(), file, err)
		}
		results[file] = result
	}
	return results, nil
}
