package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName is the project-level ignore file read from the working
// root.
const IgnoreFileName = ".simplegitignore"

// IgnoreFunc reports whether a repo-relative, slash-separated path should be
// left out of staging and status.
type IgnoreFunc func(path string) bool

// IgnoreChecker determines if a path should be ignored, using gitignore-like
// patterns from .simplegitignore. The last matching pattern wins, so "!"
// lines can re-include paths.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
	regex    *regexp.Regexp
}

// NewIgnoreChecker creates an IgnoreChecker for the given repository root.
// A missing ignore file yields a checker that ignores nothing beyond the
// metadata directory.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{}

	f, err := os.Open(filepath.Join(repoRoot, IgnoreFileName))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	return ic
}

// parseIgnoreLine parses one ignore-file line. Returns nil for blank lines
// and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}

	p.hasSlash = anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored checks whether a repo-relative path should be ignored. The
// metadata directory is always ignored.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	rel = filepath.ToSlash(rel)
	if isMetaPath(rel) {
		return true
	}
	if ic == nil {
		return false
	}

	ignored := false
	for i := range ic.patterns {
		if ic.patterns[i].matches(rel) {
			ignored = !ic.patterns[i].negated
		}
	}
	return ignored
}

// matches reports whether p applies to rel or to one of its parent
// directories.
func (p *ignorePattern) matches(rel string) bool {
	segments := strings.Split(rel, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		isDirPrefix := i < len(segments)-1
		if p.dirOnly && !isDirPrefix {
			continue
		}
		target := segments[i]
		if p.hasSlash {
			target = prefix
		}
		if p.match(target) {
			return true
		}
	}
	return false
}

func (p *ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func isMetaPath(rel string) bool {
	return rel == MetaDirName || strings.HasPrefix(rel, MetaDirName+"/")
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// Globstar directory segment: match zero or more path segments.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
