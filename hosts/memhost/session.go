package memhost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/internal/nodepath"
)

// Session is an in-memory host session. The zero value is not usable; build
// one with New. Like real scripting hosts, a Session is confined to the
// goroutine that owns it.
type Session struct {
	nodes   map[string]*Node
	vars    map[string]string
	bundles map[string][]string
}

// New creates an empty session.
func New() *Session {
	return &Session{
		nodes:   make(map[string]*Node),
		vars:    make(map[string]string),
		bundles: make(map[string][]string),
	}
}

// Resolve implements host.Session.
func (s *Session) Resolve(ctx context.Context, path string) (host.Node, error) {
	n, ok := s.nodes[path]
	if !ok || n.deleted {
		return nil, &host.NotFoundError{Path: path}
	}
	return n, nil
}

// Var implements host.Session.
func (s *Session) Var(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVar defines (or redefines) a session global variable.
func (s *Session) SetVar(name, value string) {
	s.vars[name] = value
}

// Bundle implements the optional host.BundleResolver capability.
func (s *Session) Bundle(name string) ([]string, error) {
	paths, ok := s.bundles[name]
	if !ok {
		return nil, fmt.Errorf("no bundle named %q", name)
	}
	return paths, nil
}

// SetBundle defines a named bundle of node paths.
func (s *Session) SetBundle(name string, paths []string) {
	s.bundles[name] = paths
}

// CreateNode adds a node at the given absolute path. Creating a path twice
// is an error, matching how hosts reject duplicate names.
func (s *Session) CreateNode(path, nodeType string) (*Node, error) {
	if err := nodepath.Validate(path); err != nil {
		return nil, err
	}
	if existing, ok := s.nodes[path]; ok && !existing.deleted {
		return nil, fmt.Errorf("a node already exists at %q", path)
	}
	slog.Debug("Creating node.", "path", path, "type", nodeType)
	n := &Node{
		sess:     s,
		path:     path,
		nodeType: nodeType,
		attrs:    make(map[string]cty.Value),
		methods:  make(map[string]host.Method),
		parms:    make(map[string]*Parm),
		tuples:   make(map[string]*Tuple),
	}
	s.nodes[path] = n
	return n, nil
}

// Node returns the concrete node at path, for scene-construction code that
// needs the builder methods rather than the host.Node view.
func (s *Session) Node(path string) (*Node, bool) {
	n, ok := s.nodes[path]
	if !ok || n.deleted {
		return nil, false
	}
	return n, true
}

// MustCreateNode is CreateNode for scene-construction code where a failure
// is a programming error.
func (s *Session) MustCreateNode(path, nodeType string) *Node {
	n, err := s.CreateNode(path, nodeType)
	if err != nil {
		panic(err)
	}
	return n
}

// DeleteNode removes the node at path. Outstanding handles go stale: every
// subsequent operation on them fails with *host.ObjectDeletedError.
func (s *Session) DeleteNode(path string) error {
	n, ok := s.nodes[path]
	if !ok || n.deleted {
		return &host.NotFoundError{Path: path}
	}
	slog.Debug("Deleting node.", "path", path)
	n.deleted = true
	delete(s.nodes, path)
	return nil
}
