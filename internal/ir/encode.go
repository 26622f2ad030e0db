package ir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Tagged JSON form of a Value:
//
//	{"t":"string","v":"Bob"}
//	{"t":"string","b64":"Yf9i"}              (string that is not valid UTF-8)
//	{"t":"ref","entity":"account","id":"...","name":"Contoso"}
//	{"t":"aliased","alias":"acc","attr":"name","v":{...}}
//
// The display parts (ref name, option name) are omitted from fingerprints.

func valueNode(v Value, display bool) map[string]any {
	node := map[string]any{"t": TypeName(v)}
	switch val := v.(type) {
	case nil, Null:
		node["t"] = "null"
	case String:
		if utf8.ValidString(string(val)) {
			node["v"] = string(val)
		} else {
			node["b64"] = base64.StdEncoding.EncodeToString([]byte(val))
		}
	case Int:
		node["v"] = int64(val)
	case Bool:
		node["v"] = bool(val)
	case Decimal:
		if display {
			node["v"] = val.String()
		} else {
			reduced := val.Apd()
			reduced.Reduce(reduced)
			node["v"] = reduced.Text('f')
		}
	case DateTime:
		node["v"] = val.Time.UTC().Format(time.RFC3339Nano)
	case GUID:
		node["v"] = val.String()
	case EntityRef:
		node["entity"] = val.LogicalName
		node["id"] = val.ID.String()
		if display && val.Name != "" {
			node["name"] = val.Name
		}
	case OptionSet:
		node["v"] = val.Value
		if display && val.Name != "" {
			node["name"] = val.Name
		}
	case Aliased:
		node["alias"] = val.Alias
		node["attr"] = val.Attribute
		node["v"] = valueNode(val.Value, display)
	case List:
		elems := make([]any, len(val))
		for i, elem := range val {
			elems[i] = valueNode(elem, display)
		}
		node["v"] = elems
	}
	return node
}

func attributesNode(attrs Attributes, display bool) map[string]any {
	obj := make(map[string]any, len(attrs))
	for k, v := range attrs {
		obj[k] = valueNode(v, display)
	}
	return obj
}

// EncodeValue returns the canonical tagged JSON of v. Strings keep their
// exact bytes; DecodeValue returns an identical value.
func EncodeValue(v Value) ([]byte, error) {
	return marshalExact(valueNode(v, true))
}

// EncodeAttributes returns the canonical tagged JSON of an attribute bag.
// Attribute names and display names must be valid UTF-8.
func EncodeAttributes(attrs Attributes) ([]byte, error) {
	return marshalExact(attributesNode(attrs, true))
}

// DecodeValue parses tagged JSON produced by EncodeValue.
func DecodeValue(data []byte) (Value, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return nodeValue(raw)
}

// DecodeAttributes parses tagged JSON produced by EncodeAttributes.
func DecodeAttributes(data []byte) (Attributes, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attributes: expected object, got %T", raw)
	}
	attrs := make(Attributes, len(obj))
	for k, node := range obj {
		v, err := nodeValue(node)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode tagged json: %w", err)
	}
	return raw, nil
}

func nodeValue(raw any) (Value, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected tagged object, got %T", raw)
	}
	tag, _ := node["t"].(string)

	switch tag {
	case "null":
		return Null{}, nil
	case "string":
		if enc, ok := node["b64"].(string); ok {
			raw, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return nil, fmt.Errorf("string: bad b64: %w", err)
			}
			return String(raw), nil
		}
		s, err := nodeString(node, "v")
		return String(s), err
	case "int":
		n, err := nodeInt(node, "v")
		return Int(n), err
	case "bool":
		b, ok := node["v"].(bool)
		if !ok {
			return nil, fmt.Errorf("bool: missing v")
		}
		return Bool(b), nil
	case "decimal":
		s, err := nodeString(node, "v")
		if err != nil {
			return nil, err
		}
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("decimal %q: %w", s, err)
		}
		return Decimal{d: d}, nil
	case "datetime":
		s, err := nodeString(node, "v")
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("datetime %q: %w", s, err)
		}
		return NewDateTime(t), nil
	case "guid":
		s, err := nodeString(node, "v")
		if err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("guid %q: %w", s, err)
		}
		return GUID(id), nil
	case "ref":
		entity, err := nodeString(node, "entity")
		if err != nil {
			return nil, err
		}
		s, err := nodeString(node, "id")
		if err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("ref id %q: %w", s, err)
		}
		name, _ := node["name"].(string)
		return EntityRef{LogicalName: entity, ID: id, Name: name}, nil
	case "option":
		n, err := nodeInt(node, "v")
		if err != nil {
			return nil, err
		}
		name, _ := node["name"].(string)
		return OptionSet{Value: n, Name: name}, nil
	case "aliased":
		alias, err := nodeString(node, "alias")
		if err != nil {
			return nil, err
		}
		attr, err := nodeString(node, "attr")
		if err != nil {
			return nil, err
		}
		inner, err := nodeValue(node["v"])
		if err != nil {
			return nil, fmt.Errorf("aliased %s.%s: %w", alias, attr, err)
		}
		return Aliased{Alias: alias, Attribute: attr, Value: inner}, nil
	case "list":
		elems, ok := node["v"].([]any)
		if !ok {
			return nil, fmt.Errorf("list: missing v")
		}
		list := make(List, len(elems))
		for i, elem := range elems {
			v, err := nodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unknown value tag %q", tag)
	}
}

func nodeString(node map[string]any, key string) (string, error) {
	s, ok := node[key].(string)
	if !ok {
		return "", fmt.Errorf("%s: missing string field %q", node["t"], key)
	}
	return s, nil
}

func nodeInt(node map[string]any, key string) (int64, error) {
	num, ok := node[key].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s: missing number field %q", node["t"], key)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: field %q is not an integer: %w", node["t"], key, err)
	}
	return n, nil
}
