// This file contains the string-parameter conveniences: variable expansion,
// file-path helpers, and node-reference resolution. They all operate on the
// parameter's evaluated string value.

package proxy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/internal/ctxlog"
)

var (
	varPattern   = regexp.MustCompile(`\$\{?([a-zA-Z0-9_]+)\}?`)
	framePattern = regexp.MustCompile(`^F[0-9]?$`)
)

// ExpandOptions controls variable expansion in Expand.
type ExpandOptions struct {
	// IgnoreFrame leaves frame placeholders ($F, $F4) untouched, so that a
	// per-frame output path survives expansion.
	IgnoreFrame bool

	// IgnoreNames lists variable names to leave untouched.
	IgnoreNames []string
}

// Expand evaluates the parameter as a string and substitutes $VAR and
// ${VAR} references from the session's global variables. Undefined
// variables are left in place.
func (p *Parm) Expand(ctx context.Context, opts ExpandOptions) (string, error) {
	raw, err := p.String(ctx)
	if err != nil {
		return "", err
	}
	sess := p.node.Session()

	expanded := varPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		if opts.IgnoreFrame && framePattern.MatchString(name) {
			return match
		}
		if slices.Contains(opts.IgnoreNames, name) {
			return match
		}
		if value, ok := sess.Var(name); ok {
			return value
		}
		return match
	})
	return expanded, nil
}

// EnsureDir creates any missing directories for a file-path parameter. A
// final path segment containing a dot is treated as a file name and
// stripped first.
func (p *Parm) EnsureDir(ctx context.Context) error {
	path, err := p.String(ctx)
	if err != nil {
		return err
	}
	dir, file := filepath.Split(path)
	if !strings.Contains(file, ".") {
		dir = path
	}
	if dir == "" {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Ensuring directory exists.", "parm", p.Path(), "dir", dir)
	return os.MkdirAll(dir, 0o755)
}

// ResolveNode treats the parameter's string value as a node path and
// resolves it through the owning session, returning a fresh proxy.
func (p *Parm) ResolveNode(ctx context.Context) (*Node, error) {
	path, err := p.String(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, p.node.Session(), path)
}

// ResolveNodes treats the parameter's string value as a whitespace-separated
// list of node paths and resolves each one. Entries starting with '@' name a
// bundle and expand through the session's BundleResolver capability when it
// has one. Paths that no longer resolve are skipped.
func (p *Parm) ResolveNodes(ctx context.Context) ([]*Node, error) {
	logger := ctxlog.FromContext(ctx)

	value, err := p.String(ctx)
	if err != nil {
		return nil, err
	}
	sess := p.node.Session()

	var paths []string
	for _, entry := range strings.Fields(value) {
		if strings.HasPrefix(entry, "@") {
			resolver, ok := sess.(host.BundleResolver)
			if !ok {
				logger.Debug("Session has no bundle support, skipping entry.", "entry", entry)
				continue
			}
			bundlePaths, err := resolver.Bundle(strings.TrimPrefix(entry, "@"))
			if err != nil {
				logger.Debug("Bundle lookup failed, skipping entry.", "entry", entry, "error", err)
				continue
			}
			paths = append(paths, bundlePaths...)
			continue
		}
		paths = append(paths, entry)
	}

	nodes := make([]*Node, 0, len(paths))
	for _, path := range paths {
		n, err := New(ctx, sess, path)
		if err != nil {
			var resErr *ResolutionError
			if errors.As(err, &resErr) {
				logger.Debug("Referenced node does not resolve, skipping.", "path", path)
				continue
			}
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
