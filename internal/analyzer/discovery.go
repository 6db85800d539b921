package analyzer

import (
	"os"
	"path/filepath"
	"sort"
)

// Directories never descended into during definition-file discovery.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	"target":       {},
}

// DiscoverDefinitionFiles walks root and returns the absolute paths of every
// file whose base name matches one of the patterns, sorted for deterministic
// processing order.
func DiscoverDefinitionFiles(root string, patterns []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if _, ok := ignoredDirs[info.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		for _, pattern := range patterns {
			ok, matchErr := filepath.Match(pattern, info.Name())
			if matchErr != nil {
				return matchErr
			}
			if ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
