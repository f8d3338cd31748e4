package luahost

import (
	"context"
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/vk/nodefacade/hosts/memhost"
	"github.com/vk/nodefacade/internal/ctxlog"
)

// methodsTable is the hidden global holding the Lua functions registered as
// node methods, keyed by "<node path>\x00<method name>".
const methodsTable = "__nodefacade_methods"

// Session is a host session whose graph was built by a Lua script. It
// embeds the in-memory session for storage and keeps the interpreter alive
// for method dispatch.
type Session struct {
	*memhost.Session
	state *lua.State
}

// LoadFile runs the Lua scene script at path and returns the session it
// built.
func LoadFile(ctx context.Context, path string) (*Session, error) {
	ctxlog.FromContext(ctx).Debug("Loading Lua scene.", "path", path)
	return load(ctx, func(l *lua.State) error {
		return lua.LoadFile(l, path, "")
	})
}

// LoadString runs an in-memory Lua scene script and returns the session it
// built.
func LoadString(ctx context.Context, src string) (*Session, error) {
	return load(ctx, func(l *lua.State) error {
		return lua.LoadString(l, src)
	})
}

func load(ctx context.Context, loadChunk func(*lua.State) error) (*Session, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)

	sess := &Session{
		Session: memhost.New(),
		state:   l,
	}
	sess.registerSceneAPI()

	if err := loadChunk(l); err != nil {
		return nil, fmt.Errorf("load lua scene: %w", err)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua scene: %w", err)
	}
	return sess, nil
}

// registerSceneAPI installs the `scene` global table and the hidden method
// storage table.
func (s *Session) registerSceneAPI() {
	l := s.state

	l.NewTable()
	l.SetGlobal(methodsTable)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "var", Function: s.luaVar},
		{Name: "bundle", Function: s.luaBundle},
		{Name: "node", Function: s.luaNode},
		{Name: "attr", Function: s.luaAttr},
		{Name: "parm", Function: s.luaParm},
		{Name: "tuple", Function: s.luaTuple},
		{Name: "lock", Function: s.luaLock},
		{Name: "expression", Function: s.luaExpression},
		{Name: "method", Function: s.luaMethod},
	}, 0)
	l.SetGlobal("scene")
}

// Close releases the interpreter. Methods on nodes from this session must
// not be called afterwards.
func (s *Session) Close() {
	s.state = nil
}
