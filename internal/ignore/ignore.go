package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syncd/internal/logger"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

const FileName = ".syncignore"

var ErrBadPattern = errors.New("bad ignore pattern")

// RuleSet holds every .syncignore found under root. Patterns from a nested
// file are scoped to its directory and come after those of its ancestors,
// so the deeper file wins for paths beneath it.
type RuleSet struct {
	root     string
	files    []string
	rules    []rule
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

type rule struct {
	line   string
	domain []string
}

func Load(root string) (*RuleSet, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	rs := &RuleSet{root: absRoot}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			logger.Log.Warn("skipping unreadable path",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != absRoot {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if parts, ok := rs.split(path); ok && gitignore.NewMatcher(rs.patterns).Match(parts, true) {
				return filepath.SkipDir
			}
		}

		return rs.loadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}

	if len(rs.files) == 0 {
		return nil, nil
	}

	rs.matcher = gitignore.NewMatcher(rs.patterns)

	logger.Log.Info("ignore rules loaded",
		zap.Int("files", len(rs.files)),
		zap.Int("patterns", len(rs.patterns)))
	return rs, nil
}

func (rs *RuleSet) loadFile(dir string) error {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var domain []string
	if dir != rs.root {
		domain, _ = rs.split(dir)
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := validate(line); err != nil {
			return fmt.Errorf("%s:%d: %q: %w", path, i+1, line, err)
		}

		rs.rules = append(rs.rules, rule{line: line, domain: domain})
		rs.patterns = append(rs.patterns, gitignore.ParsePattern(line, domain))
	}

	rs.files = append(rs.files, path)
	logger.Log.Debug("loaded ignore file",
		zap.String("path", path))
	return nil
}

func validate(line string) error {
	p := strings.TrimPrefix(line, "!")
	p = strings.TrimRight(p, " ")
	p = strings.Trim(p, "/")
	if p == "" {
		return ErrBadPattern
	}

	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "**" {
			continue
		}
		if _, err := filepath.Match(part, ""); err != nil {
			return ErrBadPattern
		}
	}

	return nil
}

// Match reports whether path is excluded. path may be absolute (under the
// root) or relative to the root. A nil RuleSet excludes nothing.
func (rs *RuleSet) Match(path string, isDir bool) bool {
	if rs == nil {
		return false
	}

	parts, ok := rs.split(path)
	if !ok {
		return false
	}

	return rs.matcher.Match(parts, isDir)
}

func (rs *RuleSet) split(path string) ([]string, bool) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(rs.root, path)
		if err != nil {
			return nil, false
		}
		rel = r
	}

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, false
	}

	return strings.Split(rel, "/"), true
}

func (rs *RuleSet) Files() []string {
	return rs.files
}

// RsyncFilters renders the loaded patterns as rsync filter rules with the
// same meaning. rsync stops at the first matching rule while the last
// matching pattern wins here, so the order is reversed. Every rule is
// anchored under the directory of the file that declared it.
func (rs *RuleSet) RsyncFilters() []string {
	if rs == nil {
		return nil
	}

	var filters []string
	for i := len(rs.rules) - 1; i >= 0; i-- {
		filters = append(filters, rs.rules[i].rsyncFilters()...)
	}
	return filters
}

func (r rule) rsyncFilters() []string {
	action := "- "
	p := r.line
	if rest, ok := strings.CutPrefix(p, "!"); ok {
		action = "+ "
		p = rest
	}
	if !strings.HasSuffix(p, `\ `) {
		p = strings.TrimRight(p, " ")
	}

	suffix := ""
	if rest, ok := strings.CutSuffix(p, "/"); ok {
		suffix = "/"
		p = rest
	}

	anchored := strings.Contains(p, "/")
	p = strings.TrimPrefix(p, "/")
	if rest, ok := strings.CutPrefix(p, "**/"); ok {
		anchored = false
		p = rest
	}

	base := "/"
	if len(r.domain) > 0 {
		base = "/" + strings.Join(r.domain, "/") + "/"
	}

	var patterns []string
	switch {
	case anchored:
		patterns = []string{base + p}
	case len(r.domain) == 0:
		// rsync matches an unanchored pattern at any depth
		patterns = []string{p}
	default:
		patterns = []string{base + p, base + "**/" + p}
	}

	// rsync needs its own rule for "**" spanning zero directories
	for _, pattern := range patterns {
		if collapsed := strings.ReplaceAll(pattern, "/**/", "/"); !slices.Contains(patterns, collapsed) {
			patterns = append(patterns, collapsed)
		}
	}

	filters := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		filters = append(filters, action+pattern+suffix)
	}
	return filters
}
