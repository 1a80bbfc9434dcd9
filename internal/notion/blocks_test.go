package notion

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	body := strings.Repeat("a", 4500)
	chunks := ChunkText(body, MaxTextLength)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2000)
	assert.Len(t, chunks[1], 2000)
	assert.Len(t, chunks[2], 500)
	assert.Equal(t, body, strings.Join(chunks, ""))
}

func TestChunkTextCountsCharacters(t *testing.T) {
	body := strings.Repeat("é", 5)
	chunks := ChunkText(body, 2)

	assert.Equal(t, []string{"éé", "éé", "é"}, chunks)
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", MaxTextLength))
	assert.Empty(t, ParagraphBlocks(""))
}

func TestParagraphBlocksPreserveOrder(t *testing.T) {
	body := strings.Repeat("x", 2000) + strings.Repeat("y", 2000) + "z"
	blocks := ParagraphBlocks(body)
	require.Len(t, blocks, 3)

	var rebuilt strings.Builder
	for _, b := range blocks {
		para := b["paragraph"].(map[string]any)
		spans := para["rich_text"].([]map[string]any)
		rebuilt.WriteString(spans[0]["text"].(map[string]any)["content"].(string))
	}
	assert.Equal(t, body, rebuilt.String())
}

func TestRenderBlocks(t *testing.T) {
	raw := `[
		{"object":"block","id":"1","type":"heading_2","heading_2":{"rich_text":[{"plain_text":"Context"}]}},
		{"object":"block","id":"2","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Login "},{"plain_text":"breaks"}]}},
		{"object":"block","id":"3","type":"numbered_list_item","numbered_list_item":{"rich_text":[{"plain_text":"one"}]}},
		{"object":"block","id":"4","type":"numbered_list_item","numbered_list_item":{"rich_text":[{"plain_text":"two"}]}},
		{"object":"block","id":"5","type":"to_do","to_do":{"rich_text":[{"plain_text":"ship"}],"checked":true}},
		{"object":"block","id":"6","type":"divider","divider":{}},
		{"object":"block","id":"7","type":"code","code":{"rich_text":[{"plain_text":"go test ./..."}],"language":"bash"}},
		{"object":"block","id":"8","type":"image","image":{"type":"external"}}
	]`
	var blocks []Block
	require.NoError(t, json.Unmarshal([]byte(raw), &blocks))

	want := strings.Join([]string{
		"## Context",
		"Login breaks",
		"1. one",
		"2. two",
		"- [x] ship",
		"---",
		"```bash",
		"go test ./...",
		"```",
	}, "\n")
	assert.Equal(t, want, RenderBlocks(blocks))
}
