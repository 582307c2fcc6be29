// Package persist defines how simulation objects describe themselves for
// storage: every object names its element and appends its own fields after
// the fields written by the type it extends.
package persist

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Writer is implemented by every persistable object.
type Writer interface {
	// ElementName returns the element tag, e.g. "PeriodicTask".
	ElementName() string
	// WriteFields appends the object's fields to e. Variants must call the
	// field writer of the type they extend before appending their own.
	WriteFields(e *Element)
}

// Field is a single named value of an element.
type Field struct {
	Key   string
	Value interface{}
}

// Element is the format-neutral form of a persisted object.
type Element struct {
	Name     string
	Fields   []Field
	Children []*Element
}

// Encode builds the element for w.
func Encode(w Writer) *Element {
	e := &Element{Name: w.ElementName()}
	w.WriteFields(e)
	return e
}

// Set appends a field. Field order is preserved.
func (e *Element) Set(key string, value interface{}) {
	e.Fields = append(e.Fields, Field{Key: key, Value: value})
}

// Append encodes w and adds it as a child element.
func (e *Element) Append(w Writer) {
	e.Children = append(e.Children, Encode(w))
}

// Field returns the value stored under key.
func (e *Element) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field keys in write order.
func (e *Element) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Child returns the first child element with the given name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MarshalYAML renders the element as a single-key mapping whose value holds
// the fields in order, followed by a "children" sequence when present.
func (e *Element) MarshalYAML() (interface{}, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range e.Fields {
		val := &yaml.Node{}
		if err := val.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("failed to encode field %s.%s: %w", e.Name, f.Key, err)
		}
		body.Content = append(body.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key}, val)
	}

	if len(e.Children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range e.Children {
			n := &yaml.Node{}
			if err := n.Encode(c); err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		body.Content = append(body.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "children"}, seq)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: e.Name},
			body,
		},
	}, nil
}

// Marshal encodes w and renders it as YAML.
func Marshal(w Writer) ([]byte, error) {
	return yaml.Marshal(Encode(w))
}

// MarshalAll renders several writers as one YAML document under a named root.
func MarshalAll(root string, ws ...Writer) ([]byte, error) {
	e := &Element{Name: root}
	for _, w := range ws {
		e.Append(w)
	}
	return yaml.Marshal(e)
}
