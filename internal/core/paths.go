package core

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/csvdata/internal/source"
)

// pathGuard confines server-side path checks to one local directory or one
// s3://bucket/prefix.
type pathGuard struct {
	root string
}

func newPathGuard(root string) pathGuard {
	root = strings.TrimSpace(root)
	if root == "" || source.IsS3(root) {
		return pathGuard{root: root}
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return pathGuard{root: filepath.Clean(root)}
}

// resolve returns the path to open for p. Relative local paths are taken
// relative to the root.
func (g pathGuard) resolve(p string) (string, error) {
	if g.root == "" {
		return "", ErrPathChecksDisabled
	}
	if source.IsS3(g.root) {
		return g.resolveS3(p)
	}
	if source.IsS3(p) {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}

	if !filepath.IsAbs(p) {
		p = filepath.Join(g.root, p)
	}
	p = filepath.Clean(p)

	// Symlinks are followed so a link inside the root cannot point out of it.
	// A missing file is checked through its parent and fails later on open.
	target := p
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		target = resolved
	} else if dir, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		target = filepath.Join(dir, filepath.Base(p))
	}
	if !within(g.root, target) {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	return p, nil
}

func (g pathGuard) resolveS3(p string) (string, error) {
	if !source.IsS3(p) {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	rootBucket, rootKey, _ := strings.Cut(strings.TrimPrefix(g.root, "s3://"), "/")
	bucket, key, err := source.ParseS3Path(p)
	if err != nil {
		return "", err
	}
	if bucket != rootBucket || strings.Contains("/"+key+"/", "/../") {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	prefix := strings.TrimSuffix(path.Clean("/"+rootKey), "/")
	if prefix != "" && !strings.HasPrefix("/"+key, prefix+"/") {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	return p, nil
}

// within reports whether target is root or below it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
