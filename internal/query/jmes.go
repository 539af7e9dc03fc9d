package query

import (
	"clientsvc/internal/types"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
)

// Filter is a compiled JMESPath predicate evaluated against single records.
type Filter struct {
	jp *jmespath.JMESPath
}

// Compile parses expression. An invalid expression is an input error.
func Compile(expression string) (*Filter, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "invalid filter %q", expression)
	}
	return &Filter{jp: jp}, nil
}

// Match reports whether the expression selects a truthy value from the record.
func (f *Filter) Match(r types.Record) (bool, error) {
	v, err := f.jp.Search(map[string]any(r))
	if err != nil {
		return false, fmt.Errorf("jmespath: %w", err)
	}
	return truthy(v), nil
}

// Apply keeps the records the expression matches, in order.
func (f *Filter) Apply(records []types.Record) ([]types.Record, error) {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Select compiles expression and applies it. An empty expression keeps everything.
func Select(expression string, records []types.Record) ([]types.Record, error) {
	if expression == "" {
		return records, nil
	}
	f, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return f.Apply(records)
}

// EvalString returns the selection of expression as a string; non-strings are JSON-encoded.
// A nil result means the expression matched nothing.
func EvalString(expression string, r types.Record) (*string, error) {
	v, err := jmespath.Search(expression, map[string]any(r))
	if err != nil {
		return nil, fmt.Errorf("jmespath: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return &t, nil
	default:
		b, _ := json.Marshal(t)
		bs := string(b)
		return &bs, nil
	}
}

// truthy follows JMESPath: false, null, "" and empty arrays or objects are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
