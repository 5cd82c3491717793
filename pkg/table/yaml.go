package table

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser handles a yaml sequence of mappings, one mapping per record:
//
//	- bearing: S 46 59 26 E
//	  distance: 95
//	  comment: fence post
//
// Headers are the mapping keys in first-seen order.
type YAMLParser struct{}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{File: filename}, nil
		}
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, &InfileError{Message: "Expected a list of records.", File: filename, Row: root.Line}
	}

	t := &Table{File: filename}
	index := map[string]int{}
	type entry struct {
		line   int
		values map[string]string
	}
	var entries []entry

	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, &InfileError{Message: "Expected a mapping of column names to values.", File: filename, Row: item.Line}
		}
		values := make(map[string]string, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, val := item.Content[i], item.Content[i+1]
			if _, dup := values[key.Value]; dup {
				return nil, &DuplicateHeadersError{File: filename, Headers: mappingKeys(item), Duplicates: []string{key.Value}}
			}
			if val.Kind != yaml.ScalarNode {
				return nil, &InfileError{Message: "Expected a plain value.", File: filename, Column: key.Value, Row: val.Line}
			}
			values[key.Value] = val.Value
			if _, ok := index[key.Value]; !ok {
				index[key.Value] = len(t.Headers)
				t.Headers = append(t.Headers, key.Value)
			}
		}
		entries = append(entries, entry{line: item.Line, values: values})
	}

	for _, e := range entries {
		cells := make([]string, len(t.Headers))
		for k, v := range e.values {
			cells[index[k]] = v
		}
		if blank(cells) {
			continue
		}
		t.Rows = append(t.Rows, Row{Num: e.line, Cells: cells})
	}
	return t, nil
}

func mappingKeys(n *yaml.Node) []string {
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}
