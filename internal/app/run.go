package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/proxy"
)

// runCommand dispatches the configured command. Every command resolves its
// node through a fresh proxy, so the tool exercises the same resolution
// path client code does.
func (a *App) runCommand(ctx context.Context, sess host.Session) error {
	args := a.config.Args
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("command %q takes %d argument(s), got %d", a.config.Command, n, len(args))
		}
		return nil
	}

	switch a.config.Command {
	case "ls":
		if err := need(1); err != nil {
			return err
		}
		return a.listParms(ctx, sess, args[0])

	case "get":
		if err := need(2); err != nil {
			return err
		}
		return a.getAttr(ctx, sess, args[0], args[1])

	case "set":
		if err := need(3); err != nil {
			return err
		}
		return a.setAttr(ctx, sess, args[0], args[1], args[2])

	case "call":
		if err := need(2); err != nil {
			return err
		}
		return a.callMethod(ctx, sess, args[0], args[1])

	case "expand":
		if err := need(2); err != nil {
			return err
		}
		return a.expandParm(ctx, sess, args[0], args[1])

	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}

func (a *App) listParms(ctx context.Context, sess host.Session, path string) error {
	n, err := proxy.New(ctx, sess, path)
	if err != nil {
		return err
	}
	for _, name := range n.Host().ParmNames() {
		p, err := n.Parm(ctx, name)
		if err != nil {
			// Tuple base names list alongside their components.
			t, terr := n.ParmTuple(ctx, name)
			if terr != nil {
				return err
			}
			v, err := t.Native(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.outW, "%s\ttuple[%d]\t%v\n", name, t.Len(), v)
			continue
		}
		v, err := p.Native(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%s\t%s\t%v\n", name, p.Type().FriendlyName(), v)
	}
	return nil
}

func (a *App) getAttr(ctx context.Context, sess host.Session, path, name string) error {
	n, err := proxy.New(ctx, sess, path)
	if err != nil {
		return err
	}
	v, err := n.Get(ctx, name)
	if err != nil {
		return err
	}
	native, err := proxy.NativeValue(ctx, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "%v\n", native)
	return nil
}

func (a *App) setAttr(ctx context.Context, sess host.Session, path, name, raw string) error {
	n, err := proxy.New(ctx, sess, path)
	if err != nil {
		return err
	}
	if err := n.Set(ctx, name, parseLiteral(raw)); err != nil {
		return err
	}
	return a.getAttr(ctx, sess, path, name)
}

func (a *App) callMethod(ctx context.Context, sess host.Session, path, name string) error {
	n, err := proxy.New(ctx, sess, path)
	if err != nil {
		return err
	}
	result, err := n.Call(ctx, name)
	if err != nil {
		return err
	}
	native, err := proxy.NativeValue(ctx, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "%v\n", native)
	return nil
}

func (a *App) expandParm(ctx context.Context, sess host.Session, path, name string) error {
	n, err := proxy.New(ctx, sess, path)
	if err != nil {
		return err
	}
	p, err := n.Parm(ctx, name)
	if err != nil {
		return err
	}
	expanded, err := p.Expand(ctx, proxy.ExpandOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, expanded)
	return nil
}

// parseLiteral interprets a CLI value argument: bool, then number, then
// plain string. Declared parameter types still get the final say through
// the proxy's conversion.
func parseLiteral(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
