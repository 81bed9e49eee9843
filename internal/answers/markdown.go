package answers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/bulkcomplete/internal/models"
)

// ParseMarkdown decodes a Markdown answers document. Level 1 headings name
// assessments, level 2 headings name attributes, the paragraph under an
// attribute is its value and a bullet list carries the supplemental info:
//
//	# ASSESSMENT-1
//
//	## Answer
//	Yes
//
//	- comment: Checked the access log
//	- url: https://example.com/log
//	- file: Access log.pdf | drive-file-id
//
// Values of multiselect and person attributes are comma separated.
func ParseMarkdown(data []byte) (*Document, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(data))

	doc := &Document{}
	var entry *Entry
	var answer *Answer

	flushAnswer := func() {
		if entry != nil && answer != nil {
			entry.Answers = append(entry.Answers, *answer)
		}
		answer = nil
	}
	flushEntry := func() {
		flushAnswer()
		if entry != nil {
			doc.Entries = append(doc.Entries, *entry)
		}
		entry = nil
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(blockText(node, data))
			switch node.Level {
			case 1:
				flushEntry()
				entry = &Entry{Key: title}
			case 2:
				if entry == nil {
					return nil, fmt.Errorf("attribute %q appears before any assessment heading", title)
				}
				flushAnswer()
				answer = &Answer{Attribute: title}
			}
		case *ast.Paragraph:
			if answer == nil {
				continue
			}
			value := strings.TrimSpace(blockText(node, data))
			if answer.HasValue {
				return nil, fmt.Errorf("%s / %s: more than one value paragraph", entry.Key, answer.Attribute)
			}
			answer.Values, answer.HasValue = splitValue(value), true
		case *ast.List:
			if answer == nil {
				continue
			}
			if err := applyInfoList(answer, node, data); err != nil {
				return nil, fmt.Errorf("%s / %s: %w", entry.Key, answer.Attribute, err)
			}
		}
	}
	flushEntry()
	return doc, nil
}

// blockText joins the source lines of a block node.
func blockText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			buf.WriteByte('\n')
		}
		seg := lines.At(i)
		buf.Write(bytes.TrimRight(seg.Value(source), "\r\n"))
	}
	return buf.String()
}

// splitValue keeps a paragraph as a single value. The caller splits lists
// once the attribute type is known.
func splitValue(s string) []string {
	if s == "" {
		return []string{}
	}
	return []string{s}
}

func applyInfoList(answer *Answer, list *ast.List, source []byte) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		block := item.FirstChild()
		if block == nil {
			continue
		}
		line := strings.TrimSpace(blockText(block, source))
		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("list item %q is not 'key: value'", line)
		}
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "comment":
			c := rest
			answer.Comment = &c
		case "url":
			answer.URLs = append(answer.URLs, rest)
		case "file":
			title, sourceID, _ := strings.Cut(rest, "|")
			answer.Files = append(answer.Files, models.File{
				Title:    strings.TrimSpace(title),
				SourceID: strings.TrimSpace(sourceID),
			})
		default:
			return fmt.Errorf("unknown list key %q (want comment, url or file)", key)
		}
	}
	return nil
}
