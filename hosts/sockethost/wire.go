// This file contains the wire format: request/response envelopes and the
// type-tagged JSON encoding of cty values.

package sockethost

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/nodefacade/host"
)

// Event names the shim on the host side listens and replies on.
const (
	requestEvent  = "nf:request"
	responseEvent = "nf:response"
)

// request is one operation sent to the host shim.
type request struct {
	ID   string       `json:"id"`
	Op   string       `json:"op"`
	Path string       `json:"path,omitempty"`
	Name string       `json:"name,omitempty"`
	Args []*wireValue `json:"args,omitempty"`
}

// response is the shim's answer, correlated by ID.
type response struct {
	ID    string     `json:"id"`
	Node  *wireNode  `json:"node,omitempty"`
	Parm  *wireParm  `json:"parm,omitempty"`
	Value *wireValue `json:"value,omitempty"`
	Text  string     `json:"text,omitempty"`
	Names []string   `json:"names,omitempty"`
	OK    bool       `json:"ok,omitempty"`
	Error *wireError `json:"error,omitempty"`
}

// wireNode is the node metadata returned by a resolve.
type wireNode struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Methods []string `json:"methods"`
	Parms   []string `json:"parms"`
}

// wireParm is the parameter metadata returned by a parm lookup.
type wireParm struct {
	Name  string          `json:"name"`
	Path  string          `json:"path"`
	Type  json.RawMessage `json:"type"`
	Comps []*wireParm     `json:"comps,omitempty"`
}

// wireValue is a cty value with its type carried alongside, so the far side
// can reconstruct exactly what was sent.
type wireValue struct {
	Type  json.RawMessage `json:"type"`
	Value json.RawMessage `json:"value"`
}

// wireError is a host-side failure in transportable form. Kind selects the
// error type it maps back onto, so staleness still looks like staleness on
// this side of the socket.
type wireError struct {
	Kind   string `json:"kind"`
	Path   string `json:"path,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const (
	errNotFound        = "not_found"
	errNoSuchAttribute = "no_such_attribute"
	errNoSuchParameter = "no_such_parameter"
	errInvalidValue    = "invalid_value"
	errReadOnly        = "read_only"
	errObjectDeleted   = "object_deleted"
)

// asHostError maps a wire error back onto the host error taxonomy. Unknown
// kinds become plain errors so new host-side failures are never silently
// reshaped.
func (e *wireError) asHostError() error {
	switch e.Kind {
	case errNotFound:
		return &host.NotFoundError{Path: e.Path}
	case errNoSuchAttribute:
		return &host.NoSuchAttributeError{Path: e.Path, Attr: e.Name}
	case errNoSuchParameter:
		return &host.NoSuchParameterError{Path: e.Path, Parm: e.Name}
	case errInvalidValue:
		return &host.InvalidValueError{Path: e.Path, Reason: e.Reason}
	case errReadOnly:
		return &host.ReadOnlyError{Path: e.Path}
	case errObjectDeleted:
		return &host.ObjectDeletedError{Path: e.Path}
	default:
		return fmt.Errorf("host error (%s): %s", e.Kind, e.Reason)
	}
}

// encodeValue converts a cty value into its wire form.
func encodeValue(v cty.Value) (*wireValue, error) {
	ty := v.Type()
	tyJSON, err := ctyjson.MarshalType(ty)
	if err != nil {
		return nil, fmt.Errorf("cannot encode value type: %w", err)
	}
	valJSON, err := ctyjson.Marshal(v, ty)
	if err != nil {
		return nil, fmt.Errorf("cannot encode value: %w", err)
	}
	return &wireValue{Type: tyJSON, Value: valJSON}, nil
}

// decodeValue reconstructs a cty value from its wire form.
func decodeValue(w *wireValue) (cty.Value, error) {
	if w == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	ty, err := ctyjson.UnmarshalType(w.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot decode value type: %w", err)
	}
	v, err := ctyjson.Unmarshal(w.Value, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot decode value: %w", err)
	}
	return v, nil
}

// decodeType reconstructs a cty type from its wire form, tolerating an
// absent type by falling back to dynamic.
func decodeType(raw json.RawMessage) (cty.Type, error) {
	if len(raw) == 0 {
		return cty.DynamicPseudoType, nil
	}
	return ctyjson.UnmarshalType(raw)
}

// encodeArgs converts call arguments for transport.
func encodeArgs(args []cty.Value) ([]*wireValue, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]*wireValue, len(args))
	for i, a := range args {
		w, err := encodeValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}
