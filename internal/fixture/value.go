package fixture

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/orgfake/internal/ir"
)

// Value is an attribute value written in YAML.
//
// Plain scalars map by their YAML type: strings to String, integers to
// Int, floats to Decimal (from the literal text, never through float64),
// booleans to Bool, timestamps to DateTime and null to Null. Sequences
// become List. Other types use a single-key tagged mapping:
//
//	parentcustomerid: {ref: {entity: account, id: "...", name: Contoso}}
//	contactid:        {guid: "..."}
//	industrycode:     {option: 7}
//	statuscode:       {option: {value: 1, name: Active}}
//	revenue:          {decimal: "1500.00"}
//	birthdate:        {datetime: "1990-05-01T00:00:00Z"}
//	telephone1:       {string: "555 0100"}
type Value struct {
	ir.Value
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	val, err := decodeValue(node)
	if err != nil {
		return err
	}
	v.Value = val
	return nil
}

func decodeValue(node *yaml.Node) (ir.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeValue(node.Alias)
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		list := make(ir.List, 0, len(node.Content))
		for _, elem := range node.Content {
			v, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		return decodeTagged(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported value", node.Line)
	}
}

func decodeScalar(node *yaml.Node) (ir.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return ir.Null{}, nil
	case "!!str":
		return ir.NewString(node.Value), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return ir.NewBool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return ir.NewInt(n), nil
	case "!!float":
		d, err := ir.NewDecimal(node.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return d, nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, err
		}
		return ir.NewDateTime(t), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported scalar type %s", node.Line, node.ShortTag())
	}
}

func decodeTagged(node *yaml.Node) (ir.Value, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("line %d: typed value must have exactly one key", node.Line)
	}
	tag, body := node.Content[0].Value, node.Content[1]

	switch tag {
	case "string":
		return ir.NewString(body.Value), nil
	case "decimal":
		d, err := ir.NewDecimal(body.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", body.Line, err)
		}
		return d, nil
	case "datetime":
		t, err := time.Parse(time.RFC3339Nano, body.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: datetime: %w", body.Line, err)
		}
		return ir.NewDateTime(t), nil
	case "guid":
		id, err := parseID(body)
		if err != nil {
			return nil, err
		}
		return ir.NewGUID(id), nil
	case "ref":
		var ref struct {
			Entity string `yaml:"entity"`
			ID     string `yaml:"id"`
			Name   string `yaml:"name"`
		}
		if err := body.Decode(&ref); err != nil {
			return nil, err
		}
		if ref.Entity == "" {
			return nil, fmt.Errorf("line %d: ref: entity is required", body.Line)
		}
		id, err := uuid.Parse(ref.ID)
		if err != nil {
			return nil, fmt.Errorf("line %d: ref id: %w", body.Line, err)
		}
		return ir.EntityRef{LogicalName: ref.Entity, ID: id, Name: ref.Name}, nil
	case "option":
		if body.Kind == yaml.ScalarNode {
			var n int64
			if err := body.Decode(&n); err != nil {
				return nil, err
			}
			return ir.NewOptionSet(n, ""), nil
		}
		var opt struct {
			Value int64  `yaml:"value"`
			Name  string `yaml:"name"`
		}
		if err := body.Decode(&opt); err != nil {
			return nil, err
		}
		return ir.NewOptionSet(opt.Value, opt.Name), nil
	default:
		return nil, fmt.Errorf("line %d: unknown value type %q", node.Content[0].Line, tag)
	}
}

func parseID(node *yaml.Node) (uuid.UUID, error) {
	id, err := uuid.Parse(node.Value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return id, nil
}
