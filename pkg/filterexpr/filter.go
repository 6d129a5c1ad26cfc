// Package filterexpr compiles AIP-style CEL filter strings into predicates
// evaluated against in-memory records, and parses order_by inputs against a
// whitelisted key schema.
package filterexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// ValueKind describes the kind of value a filterable field holds.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindBool      ValueKind = "bool"
	KindTimestamp ValueKind = "timestamp"
)

// Schema maps filterable field names to their kinds.
type Schema map[string]ValueKind

// Filter is a compiled predicate. The zero value (and a compiled empty
// expression) matches everything.
type Filter struct {
	prg cel.Program
}

// ErrInvalid marks user-supplied filter or order_by input that failed to
// parse or type-check; callers map it to a bad-request response.
var ErrInvalid = errors.New("invalid filter expression")

var errNotBool = errors.New("filterexpr: expression must evaluate to a boolean")

func celType(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindBool:
		return cel.BoolType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("filterexpr: unsupported value kind %q", kind)
	}
}

// Compile parses and type-checks a filter expression against the schema.
// An empty expression yields a match-all filter.
func Compile(expr string, schema Schema) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}

	opts := make([]cel.EnvOption, 0, len(schema))
	for name, kind := range schema {
		t, err := celType(kind)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cel.Variable(name, t))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("filterexpr: build env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression must evaluate to a boolean", ErrInvalid)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filterexpr: build program: %w", err)
	}
	return &Filter{prg: prg}, nil
}

// Match evaluates the predicate against one record's field values. Fields
// declared in the schema but missing from values are treated as an error by
// CEL, so callers should always pass the full activation.
func (f *Filter) Match(values map[string]any) (bool, error) {
	if f == nil || f.prg == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(values)
	if err != nil {
		return false, fmt.Errorf("filterexpr: eval: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errNotBool
	}
	return matched, nil
}
