package notion

import (
	"strconv"
	"strings"
)

// MaxTextLength is the largest text content the API accepts in one rich
// text object, counted in characters.
const MaxTextLength = 2000

// ChunkText splits s into consecutive pieces of at most size characters.
// Joining the pieces yields s again. An empty string has no pieces.
func ChunkText(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ParagraphBlocks turns body into paragraph blocks, one per chunk, in
// order.
func ParagraphBlocks(body string) []map[string]any {
	chunks := ChunkText(body, MaxTextLength)
	blocks := make([]map[string]any, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []map[string]any{{
					"type": "text",
					"text": map[string]any{"content": chunk},
				}},
			},
		})
	}
	return blocks
}

// RenderBlocks renders page content as markdown-flavoured plain text.
// Unknown block types are skipped.
func RenderBlocks(blocks []Block) string {
	var lines []string
	numbered := 0
	for i := range blocks {
		b := &blocks[i]
		if b.Type != "numbered_list_item" {
			numbered = 0
		}
		if b.Type == "divider" {
			lines = append(lines, "---")
			continue
		}
		tb, ok := b.text()
		if !ok {
			continue
		}
		text := joinSpans(tb.RichText)
		switch b.Type {
		case "paragraph":
			lines = append(lines, text)
		case "heading_1":
			lines = append(lines, "# "+text)
		case "heading_2":
			lines = append(lines, "## "+text)
		case "heading_3":
			lines = append(lines, "### "+text)
		case "bulleted_list_item":
			lines = append(lines, "- "+text)
		case "numbered_list_item":
			numbered++
			lines = append(lines, strconv.Itoa(numbered)+". "+text)
		case "to_do":
			box := "[ ]"
			if tb.Checked {
				box = "[x]"
			}
			lines = append(lines, "- "+box+" "+text)
		case "quote", "callout":
			lines = append(lines, "> "+text)
		case "code":
			lines = append(lines, "```"+tb.Language, text, "```")
		}
	}
	return strings.Join(lines, "\n")
}

func joinSpans(spans []RichText) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Content())
	}
	return b.String()
}
