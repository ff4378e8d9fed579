package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/mvp-joe/project-scribe/internal/config"
	"github.com/mvp-joe/project-scribe/internal/pathglob"
)

// FileDiscovery finds source files under a root with glob patterns and
// ignore rules.
type FileDiscovery struct {
	rootDir string
	code    *pathglob.Set
	ignore  *pathglob.Set
}

// NewFileDiscovery compiles the code and ignore patterns.
func NewFileDiscovery(rootDir string, codePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	code, err := pathglob.Compile(codePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid code pattern: %w", err)
	}
	ignore, err := pathglob.Compile(ignorePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	return &FileDiscovery{rootDir: rootDir, code: code, ignore: ignore}, nil
}

// DiscoverFiles walks the root and returns matching paths relative to it,
// slash-separated and sorted so runs are reproducible.
func (fd *FileDiscovery) DiscoverFiles(ctx context.Context) ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if fd.shouldIgnoreDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.ignore.Match(relPath) {
			return nil
		}
		if _, ok := DetectLanguage(relPath); !ok {
			return nil
		}
		if fd.code.Match(relPath) {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// shouldIgnoreDir reports whether a whole directory is excluded. The config
// directory is always skipped.
func (fd *FileDiscovery) shouldIgnoreDir(relPath string) bool {
	if relPath == config.DirName {
		return true
	}
	return fd.ignore.MatchDir(relPath)
}
