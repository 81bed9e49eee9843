package answers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// Template renders a YAML answers skeleton for rows, pre-filled with the
// current values. Non-applicable attributes are left out.
func Template(rows []models.Row) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	for _, row := range rows {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: row.Slug, HeadComment: row.Title}
		body := &yaml.Node{Kind: yaml.MappingNode}
		for i := range row.Attributes {
			attr := &row.Attributes[i]
			if !attr.IsApplicable {
				continue
			}
			body.Content = append(body.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: attr.Title, HeadComment: describe(attr)},
				valueNode(attr),
			)
		}
		top.Content = append(top.Content, key, body)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{top}}); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return buf.Bytes(), nil
}

func describe(attr *models.Attribute) string {
	parts := []string{string(attr.Type)}
	if attr.Validation.Mandatory {
		parts = append(parts, "mandatory")
	}
	if attr.Type.HasOptions() && attr.Options != nil {
		parts = append(parts, "options: "+strings.Join(attr.Options.Values, ", "))
	}
	if attr.Type == models.TypeDate {
		parts = append(parts, DateLayout)
	}
	if info := validation.RequiredInfoFor(attr); info.Any() {
		parts = append(parts, strings.ToLower(info.Title()))
	}
	return strings.Join(parts, "; ")
}

func valueNode(attr *models.Attribute) *yaml.Node {
	switch attr.Type {
	case models.TypeCheckbox:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(attr.Value.Checked())}
	case models.TypePerson:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range attr.Value.People() {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(p.ID, 10)})
		}
		return seq
	case models.TypeMultiselect:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range splitList([]string{attr.Value.Text()}) {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		return seq
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Value.Text()}
	}
}
