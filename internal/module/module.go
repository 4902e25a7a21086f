// Package module resolves and parses Mash import targets (spec §4.7). It
// is an external collaborator to lowering: it never lowers or evaluates —
// it only turns an import path into parsed statements the generator can
// splice into its own IR stream under the chosen alias.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"

	mashErr "mash/internal/errors"
	"mash/internal/lexer"
	"mash/internal/parser"
)

// Module is one successfully resolved, parsed import.
type Module struct {
	Path   string
	Alias  string
	Source string
	Stmts  []parser.Stmt
}

// Loader walks a search-path list looking for importable Mash source,
// caching parsed results by requested path+version so a module imported
// from several places is only read and parsed once.
type Loader struct {
	searchPath []string
	mu         sync.RWMutex
	cache      map[string]*Module
	group      singleflight.Group
}

// NewLoader builds a loader over searchPath, appending the bundled
// standard library directory unless noLibmash is set (spec §6's
// `--no-libmash`).
func NewLoader(searchPath []string, noLibmash bool) *Loader {
	paths := append([]string{}, searchPath...)
	if !noLibmash {
		paths = append(paths, bundledLibPath())
	}
	return &Loader{searchPath: paths, cache: make(map[string]*Module)}
}

func bundledLibPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "libmash"
	}
	return filepath.Join(filepath.Dir(exe), "libmash")
}

// AddSearchPath appends dir to the search path (spec §6's repeatable `-l`).
func (l *Loader) AddSearchPath(dir string) {
	l.searchPath = append(l.searchPath, dir)
}

// Load resolves path — optionally suffixed `@vX.Y.Z` — against the search
// path, reads it, and parses it. alias names the binding the caller
// installs for the result; when empty it defaults to path's last segment.
func (l *Loader) Load(path, alias string) (*Module, error) {
	base, version, err := splitVersion(path)
	if err != nil {
		return nil, err
	}
	if alias == "" {
		alias = lastSegment(base)
	}
	cacheKey := base + "@" + version

	l.mu.RLock()
	cached, ok := l.cache[cacheKey]
	l.mu.RUnlock()
	if ok {
		clone := *cached
		clone.Alias = alias
		return &clone, nil
	}

	v, err, _ := l.group.Do(cacheKey, func() (interface{}, error) {
		return l.loadFresh(base, version)
	})
	if err != nil {
		return nil, err
	}
	m := v.(*Module)

	l.mu.Lock()
	l.cache[cacheKey] = m
	l.mu.Unlock()

	clone := *m
	clone.Alias = alias
	return &clone, nil
}

// splitVersion separates a trailing `@vX.Y.Z` version suffix, validating it
// with semver (spec §2's domain-stack wiring); a path with no `@` has no
// version constraint.
func splitVersion(path string) (base, version string, err error) {
	at := strings.LastIndexByte(path, '@')
	if at < 0 {
		return path, "", nil
	}
	base, version = path[:at], path[at+1:]
	if !semver.IsValid(version) {
		return "", "", mashErr.New(mashErr.ImportError,
			fmt.Sprintf("invalid module version %q in import %q", version, path),
			mashErr.Location{}, "")
	}
	return base, version, nil
}

func lastSegment(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '.' })
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

func (l *Loader) loadFresh(base, version string) (interface{}, error) {
	resolved, err := l.find(base, version)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(resolved)
	if err != nil {
		return nil, mashErr.Wrap(mashErr.ImportError, "failed to read module "+base, mashErr.Location{}, err)
	}

	scanner := lexer.NewScanner(string(src), resolved)
	tokens, err := scanner.ScanTokens()
	if err != nil {
		return nil, mashErr.Wrap(mashErr.ImportError, "failed to scan module "+base, mashErr.Location{}, err)
	}

	p := parser.NewParserWithSource(tokens, string(src), resolved)
	stmts, err := p.Parse()
	if err != nil {
		return nil, mashErr.Wrap(mashErr.ImportError, "failed to parse module "+base, mashErr.Location{}, err)
	}

	return &Module{Path: resolved, Source: string(src), Stmts: stmts}, nil
}

// find walks the search path trying, for each directory: "<dir>/<base
// (with version)>.mash" then "<dir>/<base>/index.mash".
func (l *Loader) find(base, version string) (string, error) {
	if strings.HasSuffix(base, ".mash") {
		if fileExists(base) {
			return base, nil
		}
		return "", mashErr.New(mashErr.ImportError, "module not found: "+base, mashErr.Location{}, "")
	}

	relParts := strings.Split(base, "/")
	rel := filepath.Join(relParts...)
	versionedRel := rel
	if version != "" {
		versionedRel = rel + "@" + version
	}

	for _, dir := range l.searchPath {
		for _, candidate := range []string{
			filepath.Join(dir, versionedRel+".mash"),
			filepath.Join(dir, rel+".mash"),
			filepath.Join(dir, versionedRel, "index.mash"),
			filepath.Join(dir, rel, "index.mash"),
		} {
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", mashErr.New(mashErr.ImportError, "module not found: "+base, mashErr.Location{}, "")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
