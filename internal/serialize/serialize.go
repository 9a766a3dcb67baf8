// Package serialize implements the Value↔JSON bridge (C10) behind the
// to_json/from_json intrinsics: a self-describing encoding where every
// Value except Intrinsic and Closure round-trips exactly (§6).
//
// Encoding builds the JSON document incrementally with sjson.SetRaw,
// growing it key-by-key/index-by-index from an empty object or array
// rather than assembling a Go `any` tree and handing it to encoding/json —
// the natural fit given sjson's path-based "set into an existing document"
// API. Decoding walks the parsed document with gjson.Result, whose `.Type`
// tag and `.ForEach` map/array iteration are a natural match for a
// recursive tagged-value decoder. Neither library appears in the teacher's
// own code (both are pulled in only transitively, via its go-snaps test
// dependency); this package is what promotes them to direct, exercised
// dependencies (see DESIGN.md).
package serialize

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/zannabianca1997/dices/internal/value"
)

// Encode serializes v to its tagged JSON form.
func Encode(v value.Value) ([]byte, error) {
	doc, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// Decode parses data back into a Value. Intrinsic and Closure tagged forms
// are rejected: they are not required to round-trip (§6) and this package
// has no way to reconstruct a closure's body or an intrinsic's behavior
// from JSON alone.
func Decode(data []byte) (value.Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("serialize: invalid JSON")
	}
	return decodeValue(gjson.ParseBytes(data))
}

func encodeValue(v value.Value) (string, error) {
	switch t := v.(type) {
	case value.Null:
		return "null", nil
	case value.Bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case value.Number:
		return encodeNumber(t)
	case value.String:
		b, err := json.Marshal(string(t))
		if err != nil {
			return "", err
		}
		return string(b), nil
	case value.List:
		doc := "[]"
		for i, el := range t {
			elDoc, err := encodeValue(el)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, fmt.Sprintf("%d", i), elDoc)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case value.Map:
		return encodeMap(t)
	case value.Intrinsic:
		name, err := json.Marshal(t.Handle.Name())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"$type":"intrinsic","$name":%s}`, name), nil
	case value.Closure:
		return `{"$type":"closure"}`, nil
	default:
		return "", fmt.Errorf("serialize: unhandled value kind %s", v.Kind())
	}
}

// encodeMap emits a plain JSON object, unless the map itself has a
// "$type" key — in which case it would be ambiguous with this package's
// own tagged forms on decode, so it is wrapped as
// {"$type":"map","$content":{...}} instead (§6).
func encodeMap(m value.Map) (string, error) {
	_, hasTypeKey := m["$type"]
	doc := "{}"
	prefix := ""
	if hasTypeKey {
		doc = `{"$type":"map","$content":{}}`
		prefix = "$content."
	}
	for _, k := range m.SortedKeys() {
		elDoc, err := encodeValue(m[k])
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, prefix+escapePathKey(k), elDoc)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

// escapePathKey backslash-escapes the path metacharacters sjson/gjson
// paths treat specially, so arbitrary map keys can be used as path
// segments.
func escapePathKey(k string) string {
	var sb strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// encodeNumber emits a plain JSON integer when n fits in 64 bits, else the
// tagged {"$type":"number","$sign":s,"$bytes":b} form with a little-endian
// magnitude (§6).
func encodeNumber(n value.Number) (string, error) {
	i := n.Int()
	if i.IsInt64() {
		return i.String(), nil
	}
	sign := i.Sign()
	mag := new(big.Int).Abs(i)
	be := mag.Bytes()
	le := make([]int, len(be))
	for idx, b := range be {
		le[len(be)-1-idx] = int(b)
	}
	bytesJSON, err := json.Marshal(le)
	if err != nil {
		return "", err
	}
	doc := `{"$type":"number"}`
	doc, err = sjson.Set(doc, "$sign", sign)
	if err != nil {
		return "", err
	}
	doc, err = sjson.SetRaw(doc, "$bytes", string(bytesJSON))
	if err != nil {
		return "", err
	}
	return doc, nil
}

func decodeValue(r gjson.Result) (value.Value, error) {
	switch r.Type {
	case gjson.Null:
		return value.NullValue, nil
	case gjson.True, gjson.False:
		return value.Bool(r.Bool()), nil
	case gjson.Number:
		n, ok := new(big.Int).SetString(r.Raw, 10)
		if !ok {
			return nil, fmt.Errorf("serialize: %q is not an integer", r.Raw)
		}
		return value.NewNumber(n), nil
	case gjson.String:
		return value.String(r.String()), nil
	case gjson.JSON:
		if r.IsArray() {
			return decodeArray(r)
		}
		return decodeObject(r)
	default:
		return nil, fmt.Errorf("serialize: unrecognized JSON node")
	}
}

func decodeArray(r gjson.Result) (value.Value, error) {
	out := value.List{}
	var decodeErr error
	r.ForEach(func(_, el gjson.Result) bool {
		v, err := decodeValue(el)
		if err != nil {
			decodeErr = err
			return false
		}
		out = append(out, v)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

func decodeObject(r gjson.Result) (value.Value, error) {
	typ := r.Get("$type")
	if !typ.Exists() {
		return decodeMap(r)
	}
	switch typ.String() {
	case "number":
		return decodeTaggedNumber(r)
	case "map":
		return decodeMap(r.Get("$content"))
	case "intrinsic", "closure":
		return nil, fmt.Errorf("serialize: %s values are not JSON-deserializable", typ.String())
	default:
		return nil, fmt.Errorf("serialize: unknown $type %q", typ.String())
	}
}

func decodeMap(r gjson.Result) (value.Value, error) {
	out := value.Map{}
	var decodeErr error
	r.ForEach(func(k, v gjson.Result) bool {
		el, err := decodeValue(v)
		if err != nil {
			decodeErr = err
			return false
		}
		out[k.String()] = el
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

func decodeTaggedNumber(r gjson.Result) (value.Value, error) {
	sign := r.Get("$sign").Int()
	bytesArr := r.Get("$bytes").Array()
	le := make([]byte, len(bytesArr))
	for i, b := range bytesArr {
		le[i] = byte(b.Int())
	}
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	mag := new(big.Int).SetBytes(be)
	if sign < 0 {
		mag.Neg(mag)
	}
	return value.NewNumber(mag), nil
}
