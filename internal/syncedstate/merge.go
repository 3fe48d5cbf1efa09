package syncedstate

import (
	"encoding/json"
	"errors"
	"reflect"
)

var errNull = errors.New("null value")

// decode parses raw onto def. When both are JSON objects the keys of raw
// replace the keys of def one level deep; otherwise raw replaces def.
func decode[T any](def T, raw []byte) (T, error) {
	var zero T

	var over map[string]json.RawMessage
	if err := json.Unmarshal(raw, &over); err == nil {
		if over == nil {
			return zero, errNull
		}
		if base, ok := objectOf(def); ok {
			for k, v := range over {
				base[k] = v
			}
			merged, err := json.Marshal(base)
			if err != nil {
				return zero, err
			}
			raw = merged
		}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// objectOf returns v as a JSON object, if it encodes to one.
func objectOf(v any) (map[string]json.RawMessage, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// decodeLocal is decode with the local store's legacy rule: a value that is
// not JSON is taken verbatim when T is a string type.
func decodeLocal[T any](def T, raw string) (T, error) {
	out, err := decode(def, []byte(raw))
	if err == nil || errors.Is(err, errNull) {
		return out, err
	}

	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return out, err
	}
	v := reflect.ValueOf(&out).Elem()
	if v.Kind() != reflect.String {
		return out, err
	}
	v.SetString(raw)
	return out, nil
}
