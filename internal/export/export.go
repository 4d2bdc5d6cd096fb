// Package export writes tasks as JSON or YAML records.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/todotxt/pkg/todotxt"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Record is the exported form of a task. Metadata keeps the order of the
// line.
type Record struct {
	Line           string           `json:"line" yaml:"line"`
	Done           bool             `json:"done" yaml:"done"`
	Priority       todotxt.Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	CreationDate   *todotxt.Date    `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	CompletionDate *todotxt.Date    `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	Description    string           `json:"description" yaml:"description"`
	Projects       []string         `json:"projects,omitempty" yaml:"projects,omitempty"`
	Contexts       []string         `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Metadata       OrderedMetadata  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func NewRecord(t *todotxt.Task) Record {
	return Record{
		Line:           t.String(),
		Done:           t.Done,
		Priority:       t.Priority,
		CreationDate:   t.CreationDate,
		CompletionDate: t.CompletionDate,
		Description:    t.Description,
		Projects:       t.ProjectTags,
		Contexts:       t.ContextTags,
		Metadata:       OrderedMetadata(t.Metadata),
	}
}

// OrderedMetadata renders as a mapping whose keys keep their line order.
type OrderedMetadata todotxt.Metadata

func (m OrderedMetadata) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (m OrderedMetadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

// Write encodes tasks to w as a JSON array or a YAML sequence.
func Write(w io.Writer, format Format, tasks []*todotxt.Task) error {
	records := make([]Record, len(tasks))
	for i, t := range tasks {
		records[i] = NewRecord(t)
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	return nil
}
