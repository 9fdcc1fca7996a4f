package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// raw mirrors the top level of a harness document. Sections whose order
// matters are kept as nodes and decoded by hand.
type raw struct {
	Metadata        Metadata  `yaml:"metadata"`
	Options         Options   `yaml:"options"`
	Connectors      yaml.Node `yaml:"connectors"`
	Cables          yaml.Node `yaml:"cables"`
	Connections     yaml.Node `yaml:"connections"`
	AdditionalItems []Item    `yaml:"additional_bom_items"`
}

// LoadFile reads every harness document in the file at path.
func LoadFile(path string) ([]*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Load(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Parse decodes harness documents from data. See Load.
func Parse(data []byte, name string) ([]*Document, error) {
	return Load(bytes.NewReader(data), name)
}

// Load decodes every YAML document in r, one harness per document, in
// stream order. Empty documents are skipped. A document's name is its
// metadata title, or name for a single-document stream, or name-N.
func Load(r io.Reader, name string) ([]*Document, error) {
	dec := yaml.NewDecoder(r)
	var docs []*Document
	for i := 0; ; i++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s: document %d", name, i+1)
		}
		if isEmpty(&node) {
			continue
		}
		doc, err := decode(&node)
		if err != nil {
			return nil, errors.WithHarness(err, fmt.Sprintf("%s#%d", name, i+1))
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: no harness documents", name)
	}
	assignNames(docs, name)
	return docs, nil
}

func isEmpty(n *yaml.Node) bool {
	if n.Kind == yaml.DocumentNode {
		return len(n.Content) == 0 || isEmpty(n.Content[0])
	}
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func assignNames(docs []*Document, fallback string) {
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		name := d.Metadata.Title()
		if name == "" {
			name = fallback
			if len(docs) > 1 {
				name = fmt.Sprintf("%s-%d", fallback, i+1)
			}
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		d.Name = name
	}
}

func decode(node *yaml.Node) (*Document, error) {
	var r raw
	if err := node.Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	doc := &Document{
		Metadata:        r.Metadata,
		Options:         r.Options,
		AdditionalItems: r.AdditionalItems,
	}

	err := eachEntry(&r.Connectors, "connectors", func(id string, v *yaml.Node) error {
		var c Connector
		if err := v.Decode(&c); err != nil {
			return errors.WithEntity(errors.Wrap(errors.ErrCodeSchema, err, "decode connector"), id)
		}
		c.ID = id
		doc.Connectors = append(doc.Connectors, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachEntry(&r.Cables, "cables", func(id string, v *yaml.Node) error {
		var c Cable
		if err := v.Decode(&c); err != nil {
			return errors.WithEntity(errors.Wrap(errors.ErrCodeSchema, err, "decode cable"), id)
		}
		c.ID = id
		doc.Cables = append(doc.Cables, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if doc.Connections, err = decodeConnections(&r.Connections); err != nil {
		return nil, err
	}
	return doc, nil
}

// eachEntry walks a mapping section in document order.
func eachEntry(n *yaml.Node, section string, fn func(id string, v *yaml.Node) error) error {
	switch n.Kind {
	case 0:
		return nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			id := n.Content[i].Value
			if err := errors.ValidateIdentifier(id); err != nil {
				return errors.WithEntity(err, id)
			}
			if err := fn(id, n.Content[i+1]); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Schema("", "line %d: %s must be a mapping", n.Line, section)
}

func decodeConnections(n *yaml.Node) ([]Row, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
	case yaml.SequenceNode:
		rows := make([]Row, 0, len(n.Content))
		for i, rn := range n.Content {
			row, err := decodeRow(rn)
			if err != nil {
				return nil, errors.WithEntity(err, fmt.Sprintf("connections[%d]", i))
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	return nil, errors.Schema("", "line %d: connections must be a list", n.Line)
}

func decodeRow(n *yaml.Node) (Row, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errors.Schema("", "line %d: connection set must be a list", n.Line)
	}
	row := make(Row, 0, len(n.Content))
	for _, en := range n.Content {
		e, err := decodeEntry(en)
		if err != nil {
			return nil, err
		}
		row = append(row, e)
	}
	return row, nil
}

// decodeEntry accepts "W1" (implicit), {X1: 5} (scalar),
// {X1: [1, 2, 3]} or {X1: "1-3"} (explicit), and [F., F.] (a list of
// single-pin components, one per position).
func decodeEntry(n *yaml.Node) (Entry, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return Entry{Ref: n.Value, Designators: Auto()}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return Entry{}, errors.Schema("", "line %d: connection entry must have exactly one key", n.Line)
		}
		ref, v := n.Content[0].Value, n.Content[1]
		d, err := decodeDesignators(v)
		if err != nil {
			return Entry{}, errors.WithEntity(err, ref)
		}
		return Entry{Ref: ref, Designators: d}, nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return Entry{}, errors.Schema("", "line %d: empty component list", n.Line)
		}
		if len(n.Content) > MaxDesignators {
			return Entry{}, errors.Schema("", "line %d: more than %d components", n.Line, MaxDesignators)
		}
		refs := make([]string, len(n.Content))
		for i, item := range n.Content {
			if item.Kind != yaml.ScalarNode || item.Value == "" {
				return Entry{}, errors.Schema("", "line %d: component list entries must be names", item.Line)
			}
			refs[i] = item.Value
		}
		return Entry{Components: refs, Designators: Auto()}, nil
	}
	return Entry{}, errors.Schema("", "line %d: invalid connection entry", n.Line)
}

func decodeDesignators(v *yaml.Node) (Designators, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return Auto(), nil
		}
		vs, err := ExpandRange(v.Value)
		if err != nil {
			return Designators{}, err
		}
		if len(vs) != 1 || vs[0] != v.Value {
			return List(vs...), nil
		}
		return One(v.Value), nil
	case yaml.SequenceNode:
		var vs []string
		for _, item := range v.Content {
			if item.Kind != yaml.ScalarNode {
				return Designators{}, errors.Schema("", "line %d: designator must be a scalar", item.Line)
			}
			expanded, err := ExpandRange(item.Value)
			if err != nil {
				return Designators{}, err
			}
			if len(vs)+len(expanded) > MaxDesignators {
				return Designators{}, errors.Schema("", "line %d: more than %d designators", v.Line, MaxDesignators)
			}
			vs = append(vs, expanded...)
		}
		if len(vs) == 0 {
			return Auto(), nil
		}
		return List(vs...), nil
	}
	return Designators{}, errors.Schema("", "line %d: designators must be a scalar or a list", v.Line)
}

// UnmarshalYAML accepts any scalar and keeps its literal text.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*t = ""
		return nil
	}
	*t = Text(node.Value)
	return nil
}

// UnmarshalYAML accepts a boolean or a shield color.
func (s *Shield) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: shield must be a boolean or a color", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*s = Shield{}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*s = Shield{Present: b}
	default:
		*s = Shield{Present: true, Color: node.Value}
	}
	return nil
}
