package proxy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/nodefacade/host"
)

// Factory builds a user wrapper around a freshly constructed proxy Node. The
// returned value is usually a pointer to a struct embedding *Node; returning
// the Node itself is how the default factory declines to wrap.
type Factory func(*Node) any

// Registry maps host node type names to wrapper factories, so that resolving
// "/out/beauty" hands back a RenderWrapper while "/obj/geo1" hands back an
// AssetWrapper, each with its own declared attributes and methods. Wrappers
// are cached per path; repeated resolution of the same path returns the same
// wrapper so per-node state survives.
//
// A Registry is confined to the thread that owns its host session, like
// everything else in this package.
type Registry struct {
	factories map[string]Factory
	fallback  Factory
	cache     map[string]any
}

// NewRegistry creates an empty registry whose default factory returns the
// bare *Node.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		fallback:  func(n *Node) any { return n },
		cache:     make(map[string]any),
	}
}

// Register associates a host node type name with a wrapper factory.
// Registering the same type twice is a programmer error and panics.
func (r *Registry) Register(nodeType string, factory Factory) {
	if _, exists := r.factories[nodeType]; exists {
		panic(fmt.Sprintf("wrapper factory for node type '%s' already registered", nodeType))
	}
	slog.Debug("Registering wrapper factory.", "nodeType", nodeType)
	r.factories[nodeType] = factory
}

// SetDefault replaces the factory used for node types with no registration.
func (r *Registry) SetDefault(factory Factory) {
	r.fallback = factory
}

// Resolve constructs (or returns the cached) wrapper for the node at path.
// The wrapper is chosen by the host node's type name and bound as the
// proxy's owner, so its declared members shadow host delegation.
func (r *Registry) Resolve(ctx context.Context, sess host.Session, path string, opts ...Option) (any, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	if !s.freshInstance {
		if wrapper, ok := r.cache[path]; ok {
			return wrapper, nil
		}
	}

	n, err := New(ctx, sess, path, opts...)
	if err != nil {
		return nil, err
	}

	factory, ok := r.factories[n.Host().Type()]
	if !ok {
		factory = r.fallback
	}
	wrapper := factory(n)
	if wrapper != any(n) {
		n.BindOwner(wrapper)
	}

	if !s.freshInstance {
		r.cache[path] = wrapper
	}
	return wrapper, nil
}

// Forget drops the cached wrapper for one path, e.g. after the host deleted
// the node.
func (r *Registry) Forget(path string) {
	delete(r.cache, path)
}

// Reset drops every cached wrapper. Call it when the host loads a new scene
// and every outstanding handle goes stale at once.
func (r *Registry) Reset() {
	r.cache = make(map[string]any)
}
