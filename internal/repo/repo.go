// Package repo acquires the tree to analyze: a local directory as is, or a
// shallow git clone of a remote repository.
package repo

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/logging"
	"github.com/firefly-engineering/repolens/internal/system"
)

// scpLike matches git's user@host:path shorthand.
var scpLike = regexp.MustCompile(`^[\w.-]+@[\w.-]+:[^/]`)

// IsRemote reports whether target names a repository to clone rather than
// a local directory.
func IsRemote(target string) bool {
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://", "file://"} {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}
	return scpLike.MatchString(target)
}

// Name derives a project name from a repository URL or path.
func Name(target string) string {
	t := strings.TrimRight(target, "/")
	if i := strings.LastIndex(t, ":"); i >= 0 && !strings.Contains(t[i:], "/") {
		t = t[i+1:]
	}
	return strings.TrimSuffix(path.Base(t), ".git")
}

// Clone replaces dest with a shallow clone of url.
func Clone(ctx context.Context, exec system.CommandExecutor, fs system.FileSystem, url, dest string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return errors.CloneFailed(url, fmt.Errorf("git is not installed: %w", err))
	}
	if fs.Exists(dest) {
		logging.Debug("removing previous clone", "dir", dest)
		if err := fs.RemoveAll(dest); err != nil {
			return errors.CloneFailed(url, fmt.Errorf("failed to remove %s: %w", dest, err))
		}
	}

	args := []string{"clone", "--depth", "1", "--", url, dest}
	logging.Debug("running", "cmd", shellquote.Join(append([]string{"git"}, args...)...))
	out, err := exec.Execute(ctx, "git", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		return errors.CloneFailed(url, err)
	}
	return nil
}

// Source is an acquired tree ready for analysis.
type Source struct {
	// Root is the directory to analyze.
	Root string
	// URL is the remote the tree was cloned from, empty for local trees.
	URL string
	// Name is the project name derived from the target.
	Name string

	cleanup func() error
}

// Close removes a clone unless it was asked to be kept. Local trees are
// never touched.
func (s *Source) Close() error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// Acquire resolves target. Remote targets are cloned into cloneDir.
func Acquire(ctx context.Context, exec system.CommandExecutor, fs system.FileSystem, target, cloneDir string, keep bool) (*Source, error) {
	if !IsRemote(target) {
		return &Source{Root: target, Name: Name(target)}, nil
	}

	logging.Info("cloning repository", "url", target, "dir", cloneDir)
	if err := Clone(ctx, exec, fs, target, cloneDir); err != nil {
		return nil, err
	}
	src := &Source{Root: cloneDir, URL: target, Name: Name(target)}
	if !keep {
		src.cleanup = func() error {
			logging.Debug("removing clone", "dir", cloneDir)
			return fs.RemoveAll(cloneDir)
		}
	}
	return src, nil
}
