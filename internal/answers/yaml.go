package answers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkcomplete/internal/models"
)

// detailedAnswer is the mapping form of an attribute answer.
type detailedAnswer struct {
	Value   yaml.Node     `yaml:"value"`
	Comment *string       `yaml:"comment"`
	URLs    []string      `yaml:"urls"`
	Files   []models.File `yaml:"files"`
}

// ParseYAML decodes a YAML answers document:
//
//	ASSESSMENT-1:
//	  Reviewed: true
//	  Answer:
//	    value: "Yes"
//	    comment: Checked the access log
//	    urls: [https://example.com/log]
//	  Tags: [pci, sox]
func ParseYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	doc := &Document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of assessments", top.Line)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, body := top.Content[i], top.Content[i+1]
		entry := Entry{Key: key.Value}
		if body.Kind != yaml.MappingNode {
			if body.Tag == "!!null" {
				doc.Entries = append(doc.Entries, entry)
				continue
			}
			return nil, fmt.Errorf("line %d: %s: expected a mapping of attributes", body.Line, key.Value)
		}

		for j := 0; j+1 < len(body.Content); j += 2 {
			answer, err := decodeYAMLAnswer(body.Content[j].Value, body.Content[j+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s / %s: %w", body.Content[j+1].Line, key.Value, body.Content[j].Value, err)
			}
			entry.Answers = append(entry.Answers, answer)
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc, nil
}

func decodeYAMLAnswer(title string, node *yaml.Node) (Answer, error) {
	answer := Answer{Attribute: title}

	if node.Kind != yaml.MappingNode {
		values, err := yamlValues(node)
		if err != nil {
			return answer, err
		}
		answer.Values, answer.HasValue = values, true
		return answer, nil
	}

	var detailed detailedAnswer
	if err := node.Decode(&detailed); err != nil {
		return answer, err
	}
	if detailed.Value.Kind != 0 {
		values, err := yamlValues(&detailed.Value)
		if err != nil {
			return answer, err
		}
		answer.Values, answer.HasValue = values, true
	}
	answer.Comment = detailed.Comment
	answer.URLs = detailed.URLs
	answer.Files = detailed.Files
	return answer, nil
}

// yamlValues flattens a scalar or a sequence of scalars. Null clears the value.
func yamlValues(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return []string{}, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: nested lists are not supported", ErrInvalidValue)
			}
			values = append(values, item.Value)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%w: expected a scalar or a list", ErrInvalidValue)
	}
}
