// Package resolver maps URL paths to files under a static root directory.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nczempin/httpd-go-uring/errors"
)

// Resolver turns URL paths into concrete file paths under its root
// directory. It performs existence checks but never reads file contents.
type Resolver struct {
	root string
}

// New creates a Resolver serving files from the given root directory.
func New(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the configured root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a URL path (leading '/' already stripped, may be empty) to an
// existing regular file under the root. Fallback rules, first existing
// regular file wins:
//
//  1. Empty path          -> root/index.html
//  2. Trailing slash      -> root/<path>/index.html
//  3. No file extension   -> root/<path>.html, then root/<path>/index.html
//  4. Otherwise           -> root/<path>
//
// Paths containing a ".." segment are rejected before any filesystem access.
func (r *Resolver) Resolve(urlPath string) (string, error) {
	for _, segment := range strings.Split(urlPath, "/") {
		if segment == ".." {
			return "", errors.NewResolveError(
				errors.ResolveErrorPathTraversal,
				"path contains '..' segment: "+urlPath,
			)
		}
	}

	var candidates []string
	switch {
	case urlPath == "":
		candidates = []string{filepath.Join(r.root, "index.html")}
	case strings.HasSuffix(urlPath, "/"):
		candidates = []string{filepath.Join(r.root, urlPath, "index.html")}
	case filepath.Ext(urlPath) == "":
		candidates = []string{
			filepath.Join(r.root, urlPath+".html"),
			filepath.Join(r.root, urlPath, "index.html"),
		}
	default:
		// A bare trailing dot ("about.") yields Ext == "." and counts as
		// an extension: the path is tried as-is, never through the
		// extension-less fallbacks.
		candidates = []string{filepath.Join(r.root, urlPath)}
	}

	for _, candidate := range candidates {
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}

	return "", errors.NewResolveError(
		errors.ResolveErrorNotFound,
		"no candidate file for: "+urlPath,
	)
}

// isRegularFile reports whether path exists and is a regular file
// (directories and special files do not qualify).
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
