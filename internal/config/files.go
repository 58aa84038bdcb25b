package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// graphExtensions are the file extensions ResolveInputs keeps.
var graphExtensions = map[string]bool{
	".dot":  true,
	".gv":   true,
	".cue":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// ResolveInputs expands the Inputs patterns relative to rootPath, removes
// everything matched by Exclude and returns the remaining graph files
// sorted by path. Config files that happen to match are never returned.
func (c *Config) ResolveInputs(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.Inputs {
		matches, err := expandGlob(absPattern(rootPath, pattern))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if isGraphFile(match) {
				fileSet[match] = true
			}
		}
	}

	for _, pattern := range c.Exclude {
		matches, err := expandGlob(absPattern(rootPath, pattern))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			delete(fileSet, match)
		}
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func absPattern(rootPath, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(rootPath, pattern)
}

func isGraphFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, "dfg2blif.") || strings.HasPrefix(base, ".dfg2blif.") {
		return false
	}
	return graphExtensions[filepath.Ext(base)]
}

// expandGlob expands a glob pattern. A "**" element matches any number of
// directories.
func expandGlob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		return filepath.Glob(pattern)
	}

	prefix, rest, _ := strings.Cut(pattern, "**")
	baseDir := filepath.Clean(prefix)
	rest = strings.TrimPrefix(rest, string(filepath.Separator))
	if _, err := filepath.Match(rest, ""); err != nil {
		return nil, err
	}

	var results []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if rest == "" || matchTail(rel, rest) {
			results = append(results, path)
		}
		return nil
	})
	return results, err
}

// matchTail reports whether the trailing path elements of rel match
// pattern, one element per pattern element.
func matchTail(rel, pattern string) bool {
	pe := strings.Split(pattern, string(filepath.Separator))
	re := strings.Split(rel, string(filepath.Separator))
	if len(re) < len(pe) {
		return false
	}
	re = re[len(re)-len(pe):]
	for i := range pe {
		if ok, _ := filepath.Match(pe[i], re[i]); !ok {
			return false
		}
	}
	return true
}
