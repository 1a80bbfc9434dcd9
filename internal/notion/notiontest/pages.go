package notiontest

// PageBuilder assembles a raw page object for tests.
type PageBuilder struct {
	page  map[string]any
	props map[string]any
}

// NewPage starts a page with the given id.
func NewPage(id string) *PageBuilder {
	props := map[string]any{}
	return &PageBuilder{
		page: map[string]any{
			"object":           "page",
			"id":               id,
			"created_time":     "2026-01-01T10:00:00.000Z",
			"last_edited_time": "2026-01-02T10:00:00.000Z",
			"properties":       props,
		},
		props: props,
	}
}

// Title sets the "Name" title property.
func (b *PageBuilder) Title(name, text string) *PageBuilder {
	b.props[name] = map[string]any{"type": "title", "title": spans(text)}
	return b
}

// RichText sets a rich_text property.
func (b *PageBuilder) RichText(name, text string) *PageBuilder {
	b.props[name] = map[string]any{"type": "rich_text", "rich_text": spans(text)}
	return b
}

// Select sets a select property.
func (b *PageBuilder) Select(name, option string) *PageBuilder {
	b.props[name] = map[string]any{"type": "select", "select": map[string]any{"name": option}}
	return b
}

// Status sets a status property.
func (b *PageBuilder) Status(name, option string) *PageBuilder {
	b.props[name] = map[string]any{"type": "status", "status": map[string]any{"name": option}}
	return b
}

// MultiSelect sets a multi_select property.
func (b *PageBuilder) MultiSelect(name string, options ...string) *PageBuilder {
	opts := make([]any, 0, len(options))
	for _, o := range options {
		opts = append(opts, map[string]any{"name": o})
	}
	b.props[name] = map[string]any{"type": "multi_select", "multi_select": opts}
	return b
}

// Relation sets a relation property.
func (b *PageBuilder) Relation(name string, ids ...string) *PageBuilder {
	b.props[name] = map[string]any{"type": "relation", "relation": refs(ids)}
	return b
}

// People sets a people property.
func (b *PageBuilder) People(name string, ids ...string) *PageBuilder {
	b.props[name] = map[string]any{"type": "people", "people": refs(ids)}
	return b
}

// URL sets a url property.
func (b *PageBuilder) URL(name, u string) *PageBuilder {
	b.props[name] = map[string]any{"type": "url", "url": u}
	return b
}

// Date sets a date property.
func (b *PageBuilder) Date(name, start string) *PageBuilder {
	b.props[name] = map[string]any{"type": "date", "date": map[string]any{"start": start}}
	return b
}

// Raw sets a property to an arbitrary value.
func (b *PageBuilder) Raw(name string, value any) *PageBuilder {
	b.props[name] = value
	return b
}

// Build returns the page object.
func (b *PageBuilder) Build() map[string]any {
	return b.page
}

func spans(text string) []any {
	return []any{map[string]any{
		"type":       "text",
		"plain_text": text,
		"text":       map[string]any{"content": text},
	}}
}

func refs(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"id": id})
	}
	return out
}
