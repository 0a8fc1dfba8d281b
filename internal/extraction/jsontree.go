package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// NodeKind identifies the variant held by a Node
type NodeKind int

const (
	NullNode NodeKind = iota
	BoolNode
	NumberNode
	StringNode
	ArrayNode
	ObjectNode
)

// Member is one key/value pair of an object node
type Member struct {
	Key   string
	Value *Node
}

// Node is a parsed JSON value. Object members keep document order.
type Node struct {
	Kind    NodeKind
	Bool    bool
	Number  json.Number
	String  string
	Items   []*Node
	Members []Member
}

// ParseTree parses a single JSON document
func ParseTree(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return root, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case nil:
		return &Node{Kind: NullNode}, nil
	case bool:
		return &Node{Kind: BoolNode, Bool: v}, nil
	case json.Number:
		return &Node{Kind: NumberNode, Number: v}, nil
	case string:
		return &Node{Kind: StringNode, String: v}, nil
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func parseObject(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: ObjectNode}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func parseArray(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: ArrayNode, Items: []*Node{}}
	for dec.More() {
		item, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

// set replaces the value of an existing key in place, so a repeated key keeps
// its first position and its last value
func (n *Node) set(key string, value *Node) {
	for i := range n.Members {
		if n.Members[i].Key == key {
			n.Members[i].Value = value
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
}

// Get returns the value of key in an object node
func (n *Node) Get(key string) (*Node, bool) {
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// IsBlank reports whether the node is null or the empty string
func (n *Node) IsBlank() bool {
	return n.Kind == NullNode || (n.Kind == StringNode && n.String == "")
}

// AnyDescendant walks the tree depth-first below n and reports whether pred
// holds for any node
func (n *Node) AnyDescendant(pred func(*Node) bool) bool {
	var children []*Node
	switch n.Kind {
	case ObjectNode:
		children = make([]*Node, 0, len(n.Members))
		for _, m := range n.Members {
			children = append(children, m.Value)
		}
	case ArrayNode:
		children = n.Items
	}
	for _, child := range children {
		if pred(child) || child.AnyDescendant(pred) {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the node keeping member order
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch n.Kind {
	case NullNode:
		buf.WriteString("null")
	case BoolNode:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case NumberNode:
		buf.WriteString(n.Number.String())
	case StringNode:
		b, err := json.Marshal(n.String)
		if err != nil {
			return err
		}
		buf.Write(b)
	case ArrayNode:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectNode:
		buf.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node kind %d", n.Kind)
	}
	return nil
}
