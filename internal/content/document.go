// Package content holds the structured post body. Posts are written in a block format
// ({"blocks": [...]}); older posts still carry a rich-text delta ({"ops": [...]}).
package content

import (
	"strings"
	"time"
)

type Format string

const (
	FormatEmpty  Format = "empty"
	FormatBlocks Format = "blocks"
	FormatDelta  Format = "delta"
)

// normalizedVersion is stamped on documents converted from the delta format
const normalizedVersion = "2.0"

type Document struct {
	Time    int64     `json:"time,omitempty" bson:"time,omitempty"`
	Version string    `json:"version,omitempty" bson:"version,omitempty"`
	Blocks  []Block   `json:"blocks,omitempty" bson:"blocks,omitempty"`
	Ops     []DeltaOp `json:"ops,omitempty" bson:"ops,omitempty"`
}

type Block struct {
	ID   string                 `json:"id,omitempty" bson:"id,omitempty"`
	Type string                 `json:"type" bson:"type"`
	Data map[string]interface{} `json:"data" bson:"data"`
}

type DeltaOp struct {
	Insert     interface{}            `json:"insert" bson:"insert"`
	Attributes map[string]interface{} `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Format reports which representation the document uses. Blocks win when both are set.
func (d Document) Format() Format {
	switch {
	case len(d.Blocks) > 0:
		return FormatBlocks
	case len(d.Ops) > 0:
		return FormatDelta
	default:
		return FormatEmpty
	}
}

func (d Document) IsEmpty() bool {
	return d.Format() == FormatEmpty
}

// Normalize converts a delta document into paragraph blocks, one per op. Non-text
// inserts (embeds) become empty paragraphs. Block documents are returned unchanged.
func Normalize(d Document) Document {
	if d.Format() != FormatDelta {
		return d
	}
	blocks := make([]Block, 0, len(d.Ops))
	for _, op := range d.Ops {
		text, _ := op.Insert.(string)
		blocks = append(blocks, Block{
			Type: "paragraph",
			Data: map[string]interface{}{"text": text},
		})
	}
	return Document{
		Time:    time.Now().UnixMilli(),
		Version: normalizedVersion,
		Blocks:  blocks,
	}
}

// PlainText flattens the document into a single line of text, cut at limit runes.
// A limit of zero or less means no limit.
func PlainText(d Document, limit int) string {
	var parts []string
	for _, b := range Normalize(d).Blocks {
		if t := blockText(b); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	runes := []rune(text)
	if limit > 0 && len(runes) > limit {
		return strings.TrimSpace(string(runes[:limit])) + "…"
	}
	return text
}

func blockText(b Block) string {
	switch b.Type {
	case "list", "checklist", "checkList":
		items, _ := b.Data["items"].([]interface{})
		var out []string
		for _, it := range items {
			switch v := it.(type) {
			case string:
				out = append(out, stripTags(v))
			case map[string]interface{}:
				if s, ok := v["text"].(string); ok {
					out = append(out, stripTags(s))
				} else if s, ok := v["content"].(string); ok {
					out = append(out, stripTags(s))
				}
			}
		}
		return strings.Join(out, " ")
	default:
		for _, key := range []string{"text", "caption", "code"} {
			if s, ok := b.Data[key].(string); ok {
				return stripTags(s)
			}
		}
	}
	return ""
}

// stripTags drops inline markup such as <b> or <a href> that the block editor keeps in text
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.ReplaceAll(sb.String(), "&nbsp;", " ")
}
