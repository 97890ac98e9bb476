package extern

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/rplkit/internal/value"
)

// YAML stores records as YAML mappings in entry order. Hex numbers keep
// their 0x form and plain lists are written in flow style.
type YAML struct{}

func (YAML) Form() Form { return FormYAML }

func (YAML) Encode(rec *Record) ([]byte, error) {
	return marshalYAML(recordNode(rec))
}

func (YAML) Decode(data []byte) (*Record, error) {
	node, err := unmarshalYAML(data)
	if err != nil {
		return nil, err
	}
	return nodeRecord(node)
}

func (YAML) EncodeSections(secs []Section) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, sec := range secs {
		root.Content = append(root.Content, strNode(sec.Name), recordNode(sec.Record))
	}
	return marshalYAML(root)
}

func (YAML) DecodeSections(data []byte) ([]Section, error) {
	node, err := unmarshalYAML(data)
	if err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of sections", node.Line)
	}
	var secs []Section
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		rec, err := nodeRecord(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", name, err)
		}
		secs = append(secs, Section{Name: name, Record: rec})
	}
	return secs, nil
}

func marshalYAML(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unmarshalYAML returns the top node of the first document in data.
func unmarshalYAML(data []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return &yaml.Node{Kind: yaml.MappingNode}, nil
		}
		return root.Content[0], nil
	}
	if root.Kind == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	return &root, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func recordNode(rec *Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range rec.Entries {
		var vn *yaml.Node
		if e.Repeated {
			vn = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, sub := range e.Records {
				vn.Content = append(vn.Content, recordNode(sub))
			}
			if len(e.Records) == 0 {
				vn.Style = yaml.FlowStyle
			}
		} else {
			vn = valueNode(e.Value)
		}
		node.Content = append(node.Content, strNode(e.Key), vn)
	}
	return node
}

func valueNode(v value.Value) *yaml.Node {
	switch x := v.(type) {
	case value.HexNum:
		if x.Int < 0 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(x.Int, 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: "0x" + strconv.FormatInt(x.Int, 16)}
	case value.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(x.Int, 10)}
	case value.Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range x.Elements() {
			node.Content = append(node.Content, valueNode(item))
		}
		return node
	}
	if n, ok := value.AsInt(v); ok {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(n, 10)}
	}
	return strNode(value.PlainText(v))
}

func nodeRecord(node *yaml.Node) (*Record, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	rec := &Record{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, vn := node.Content[i].Value, node.Content[i+1]
		if isRecordList(vn) {
			subs := make([]*Record, len(vn.Content))
			for j, item := range vn.Content {
				sub, err := nodeRecord(item)
				if err != nil {
					return nil, fmt.Errorf("%s: entry %d: %w", key, j, err)
				}
				subs[j] = sub
			}
			rec.SetRecords(key, subs)
			continue
		}
		v, err := nodeValue(vn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		rec.Set(key, v)
	}
	return rec, nil
}

func isRecordList(node *yaml.Node) bool {
	if node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return false
		}
	}
	return true
}

func nodeValue(node *yaml.Node) (value.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return nodeValue(node.Alias)
	case yaml.SequenceNode:
		items := make([]value.Value, len(node.Content))
		for i, item := range node.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.List{Items: items}, nil
	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return nil, fmt.Errorf("line %d: unexpected mapping", node.Line)
}

func scalarValue(node *yaml.Node) (value.Value, error) {
	switch node.ShortTag() {
	case "!!int":
		n, err := strconv.ParseInt(strings.ReplaceAll(node.Value, "_", ""), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		lower := strings.ToLower(strings.TrimLeft(node.Value, "+-"))
		if strings.HasPrefix(lower, "0x") {
			return value.HexNum{Int: n}, nil
		}
		return value.Number{Int: n}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		if b {
			return value.Number{Int: 1}, nil
		}
		return value.Number{Int: 0}, nil
	case "!!null":
		return nil, fmt.Errorf("line %d: null values are not supported", node.Line)
	case "!!float":
		return nil, fmt.Errorf("line %d: number %s is not an integer", node.Line, node.Value)
	}
	return value.String{Text: node.Value}, nil
}
