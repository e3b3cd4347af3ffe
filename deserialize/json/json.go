// Code specific to parsing JSON into node trees.
//
// The standard decoder is driven token by token rather than through
// `json.Unmarshal` into a map: Go maps do not remember insertion order, and
// converters downstream rely on object members keeping the order the
// document listed them.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gentype-io/gentype/deserialize/node"
)

// The parsing driver for JSON.
type Driver struct{}

// Parse parses a JSON document into a node tree.
func (Driver) Parse(buf []byte) (node.Value, error) {
	return Parse(buf)
}

var _ node.Driver = Driver{}

// Parse parses a JSON document into a node tree. Object members keep their
// document order; numbers become int64 when integral, float64 otherwise.
func Parse(buf []byte) (node.Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(buf))
	decoder.UseNumber()

	value, err := parseValue(decoder)
	if err != nil {
		return nil, err
	}
	// A document must be a single value.
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return value, nil
}

func parseValue(decoder *json.Decoder) (node.Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON:\n\t * %w", err)
	}
	return parseFrom(decoder, token)
}

func parseFrom(decoder *json.Decoder, token json.Token) (node.Value, error) {
	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return parseObject(decoder)
		case '[':
			return parseArray(decoder)
		}
		return nil, fmt.Errorf("invalid JSON: unexpected %q", typed.String())
	case json.Number:
		return node.Of(normalizeNumber(typed)), nil
	case string, bool, nil:
		return node.Of(typed), nil
	}
	return nil, fmt.Errorf("invalid JSON: unexpected token %v", token)
}

func parseObject(decoder *json.Decoder) (node.Value, error) {
	object := node.NewObject()
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON object:\n\t * %w", err)
		}
		if delim, ok := token.(json.Delim); ok && delim == '}' {
			return object.AsValue(), nil
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("invalid JSON object: key %v is not a string", token)
		}
		value, err := parseValue(decoder)
		if err != nil {
			return nil, err
		}
		object.Set(key, value)
	}
}

func parseArray(decoder *json.Decoder) (node.Value, error) {
	list := node.List{}
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON array:\n\t * %w", err)
		}
		if delim, ok := token.(json.Delim); ok && delim == ']' {
			return list, nil
		}
		value, err := parseFrom(decoder, token)
		if err != nil {
			return nil, err
		}
		list = append(list, value)
	}
}

// normalizeNumber keeps integral numbers integral so that downstream
// conversions into int targets stay lossless.
func normalizeNumber(n json.Number) any {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	// Out-of-range literal; surface it as text and let the target decide.
	return n.String()
}
