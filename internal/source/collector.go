// Package source enumerates and loads the files an analysis run operates on.
// Every candidate file is read eagerly into memory before analysis begins;
// source trees at developer-tool scale make that cheap, and it keeps the rest
// of the pipeline free of I/O.
package source

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs lists directories excluded from the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"bin":          true,
	"obj":          true,
}

// Collect loads every file under root whose extension is in the allow-list,
// returning units sorted by relative path. If root is inside a git
// repository, git ls-files is used so ignore rules are respected; otherwise a
// filesystem walk skips hidden directories and the usual build/dependency
// directories.
//
// Extensions must include the leading dot and are matched case-insensitively.
func Collect(root string, extensions []string) ([]*Unit, error) {
	allow := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allow[strings.ToLower(ext)] = true
	}

	paths, err := gitListFiles(root, allow)
	if err != nil {
		paths, err = walkListFiles(root, allow)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)

	units := make([]*Unit, 0, len(paths))
	for _, rel := range paths {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		units = append(units, &Unit{
			Path:    rel,
			AbsPath: abs,
			Text:    string(content),
		})
	}
	return units, nil
}

// gitListFiles discovers tracked and untracked (but not ignored) files under
// root via git ls-files, filtered to the allowed extensions.
func gitListFiles(root string, allow map[string]bool) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !allow[strings.ToLower(filepath.Ext(line))] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(line))); err != nil {
			continue // listed but deleted from the working tree
		}
		paths = append(paths, filepath.ToSlash(line))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used when git is
// unavailable. Hidden entries and skipDirs are pruned.
func walkListFiles(root string, allow map[string]bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !allow[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
