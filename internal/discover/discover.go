package discover

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/DeusData/javagraph/internal/lang"
)

// IgnoreFileName is the per-repository ignore file, one glob per line.
const IgnoreFileName = ".javagraphignore"

// IGNORE_PATTERNS are directory names skipped at any depth. None of them is a
// valid Java package segment.
var IGNORE_PATTERNS = map[string]bool{
	".cache": true, ".eclipse": true, ".git": true, ".gradle": true,
	".hg": true, ".idea": true, ".maven": true, ".mvn": true,
	".settings": true, ".svn": true, ".tmp": true, ".vscode": true,
	"node_modules": true,
}

// ROOT_BUILD_DIRS are build output directories skipped only directly under
// the repository root, since packages such as com.android.build reuse the
// names. Nested module outputs are left to .gitignore.
var ROOT_BUILD_DIRS = map[string]bool{
	"bin": true, "build": true, "out": true, "target": true, "temp": true, "tmp": true,
}

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to repo root, slash separated
	Language lang.Language // detected language
}

// Options configures file discovery.
type Options struct {
	IgnoreFile string // path to an ignore file; defaults to <repo>/.javagraphignore
	// ExtraIgnore holds additional glob patterns, matched like ignore file lines.
	ExtraIgnore []string
	// RespectGitignore skips paths matched by <repo>/.gitignore.
	RespectGitignore bool
}

type matcher struct {
	patterns  []string
	gitignore *ignore.GitIgnore
}

func (m *matcher) skip(name, rel string, isDir bool) bool {
	if isDir && (IGNORE_PATTERNS[name] || (ROOT_BUILD_DIRS[name] && rel == name)) {
		return true
	}
	for _, pattern := range m.patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	if m.gitignore != nil {
		if m.gitignore.MatchesPath(rel) {
			return true
		}
		if isDir && m.gitignore.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}

func newMatcher(repoPath string, opts *Options) (*matcher, error) {
	m := &matcher{}
	ignPath := filepath.Join(repoPath, IgnoreFileName)
	if opts != nil && opts.IgnoreFile != "" {
		ignPath = opts.IgnoreFile
	}
	patterns, err := loadIgnoreFile(ignPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	m.patterns = patterns
	if opts == nil {
		return m, nil
	}
	m.patterns = append(m.patterns, opts.ExtraIgnore...)

	if opts.RespectGitignore {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(repoPath, ".gitignore"))
		switch {
		case err == nil:
			m.gitignore = gi
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read .gitignore: %w", err)
		}
	}
	return m, nil
}

// Discover walks a repository and returns all Java source files in walk
// order. Any error while enumerating the tree aborts the walk.
func Discover(ctx context.Context, repoPath string, opts *Options) ([]FileInfo, error) {
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := newMatcher(repoPath, opts)
	if err != nil {
		return nil, err
	}

	var files []FileInfo

	err = filepath.Walk(repoPath, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", path, walkErr)
		}

		rel, _ := filepath.Rel(repoPath, path)
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path != repoPath && m.skip(info.Name(), rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		l, ok := lang.LanguageForExtension(filepath.Ext(path))
		if !ok || !info.Mode().IsRegular() {
			return nil
		}
		if m.skip(info.Name(), rel, false) {
			return nil
		}
		files = append(files, FileInfo{
			Path:     path,
			RelPath:  rel,
			Language: l,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
