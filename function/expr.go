package function

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/subframe7536/yaak/template"
)

// Expr evaluates an expr-lang expression.
//
// Every argument other than "expression" is visible to the expression as a
// string variable of the same name, and env(name) reads the process
// environment. Compiled programs are cached per expression and argument set.
type Expr struct {
	programs *sync.Map // programKey -> *vm.Program
}

// NewExpr returns the expr function with an empty program cache.
func NewExpr() Expr { return Expr{programs: &sync.Map{}} }

func (Expr) Descriptor() template.FunctionDescriptor {
	return template.FunctionDescriptor{
		Name:        "expr",
		Description: "Evaluate an expression; other arguments are available as variables",
		Args: []template.ArgDescriptor{{
			Name:        "expression",
			Label:       "Expression",
			Placeholder: `upper(name) + "!"`,
		}},
	}
}

func (e Expr) Run(ctx context.Context, call Call) (string, error) {
	source := call.Arg("expression")
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	env := exprEnv(call.Args)

	program, err := e.compile(source, env)
	if err != nil {
		return "", ErrInvalidArgument.Wrap(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	return stringify(out)
}

func (e Expr) compile(source string, env map[string]any) (*vm.Program, error) {
	key := source + "\x00" + strings.Join(slices.Sorted(maps.Keys(env)), "\x00")

	if e.programs != nil {
		if p, ok := e.programs.Load(key); ok {
			return p.(*vm.Program), nil
		}
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, err
	}

	if e.programs != nil {
		e.programs.Store(key, program)
	}

	return program, nil
}

func exprEnv(args map[string]string) map[string]any {
	env := make(map[string]any, len(args)+1)

	for k, v := range args {
		if k != "expression" {
			env[k] = v
		}
	}

	env["env"] = os.Getenv

	return env
}

func stringify(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, float64, uint64:
		return fmt.Sprint(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", template.ErrFunctionFailed.Wrap(err)
		}

		return string(b), nil
	}
}
