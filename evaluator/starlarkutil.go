package evaluator

import (
	"fmt"

	"go.starlark.net/starlark"
)

// toGo converts a Starlark value declared in a BUILD file to a native Go
// value, so the rest of the core never needs to import go.starlark.net.
// This is deliberately narrow - BUILD files only ever hand the evaluator
// None, strings, bools, ints, floats, lists/tuples of the above, and dicts
// (with string keys) of the above.
func toGo(v starlark.Value) (interface{}, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(v), nil
	case starlark.String:
		return string(v), nil
	case starlark.Int:
		i, ok := v.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", v.String())
		}
		return i, nil
	case starlark.Float:
		return float64(v), nil
	case *starlark.List:
		return toGoSlice(v.Len(), v.Index)
	case starlark.Tuple:
		return toGoSlice(v.Len(), func(i int) starlark.Value { return v[i] })
	case *starlark.Dict:
		out := make(map[string]interface{}, v.Len())
		for _, item := range v.Items() {
			k, ok := starlark.AsString(item[0])
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings, got %s", item[0].Type())
			}
			gv, err := toGo(item[1])
			if err != nil {
				return nil, err
			}
			out[k] = gv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported BUILD-file value of type %s", v.Type())
	}
}

func toGoSlice(n int, at func(int) starlark.Value) ([]interface{}, error) {
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		gv, err := toGo(at(i))
		if err != nil {
			return nil, err
		}
		out[i] = gv
	}
	return out, nil
}

// stringList converts a Go value (expected to be []interface{} of
// strings, or a bare string) into a []string, as used for "dependencies",
// "sources", etc. kwargs.
func stringList(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	switch v := v.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}
