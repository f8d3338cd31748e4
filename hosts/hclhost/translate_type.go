// This file contains the translation of HCL type expressions (`string`,
// `number`, `list(number)`) into cty.Type values for parameter declarations.

package hclhost

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodefacade/internal/ctxlog"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. A missing expression means the parameter takes its type from
// its default value.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if !exprDefined(expr) {
		logger.Debug("No type expression, deferring to default value.")
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type expression: expected a simple type name")
		}
		return primitiveTypeByName(v.Traversal.RootName())

	case *hclsyntax.FunctionCallExpr:
		if v.Name != "list" {
			return cty.DynamicPseudoType, fmt.Errorf("unsupported type constructor %q", v.Name)
		}
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("the list() type constructor requires exactly one argument, got %d", len(v.Args))
		}
		elemType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("in list element type: %w", err)
		}
		return cty.List(elemType), nil

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported type expression %T", expr)
	}
}

func primitiveTypeByName(name string) (cty.Type, error) {
	switch name {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	case "any":
		return cty.DynamicPseudoType, nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type name %q", name)
	}
}
