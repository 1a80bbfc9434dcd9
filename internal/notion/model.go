package notion

import "encoding/json"

// Page is a remote database row. Properties are kept undecoded until an
// extractor asks for them, so a malformed field never fails the page.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	URL            string              `json:"url,omitempty"`
	Archived       bool                `json:"archived"`
	Properties     map[string]Property `json:"properties"`
}

// Prop returns the named property, or nil when the page has none.
func (p *Page) Prop(name string) *Property {
	if p == nil || p.Properties == nil {
		return nil
	}
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	return &prop
}

// Property is one field value. Type is the discriminator naming which
// payload key carries the value ("title", "select", "relation", ...).
type Property struct {
	ID   string
	Type string

	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps the raw payload. Input that is not an object yields
// an empty Property instead of an error.
func (p *Property) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*p = Property{}
		return nil
	}
	p.fields = fields
	p.ID = rawString(fields["id"])
	p.Type = rawString(fields["type"])
	return nil
}

// MarshalJSON writes the property back in its original shape.
func (p Property) MarshalJSON() ([]byte, error) {
	if p.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.fields)
}

// payload decodes the value stored under kind into dst. It reports false
// when the property is of another type or the payload does not decode.
func (p *Property) payload(kind string, dst any) bool {
	if p == nil || p.Type != kind {
		return false
	}
	raw, ok := p.fields[kind]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// RichText is one span of a title or rich_text value.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

// Content returns the span text, preferring plain_text.
func (r RichText) Content() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// Option is a select, status or multi_select choice.
type Option struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Reference is a relation target or a person.
type Reference struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
}

// DateValue is the payload of a date property.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// Block is one content block of a page body.
type Block struct {
	Object      string
	ID          string
	Type        string
	HasChildren bool

	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps the raw payload, like Property.
func (b *Block) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*b = Block{}
		return nil
	}
	b.fields = fields
	b.Object = rawString(fields["object"])
	b.ID = rawString(fields["id"])
	b.Type = rawString(fields["type"])
	var hasChildren bool
	if raw, ok := fields["has_children"]; ok {
		_ = json.Unmarshal(raw, &hasChildren)
	}
	b.HasChildren = hasChildren
	return nil
}

// textBlock is the payload shared by every text-bearing block type.
type textBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Language string     `json:"language"`
}

func (b *Block) text() (textBlock, bool) {
	var tb textBlock
	raw, ok := b.fields[b.Type]
	if !ok {
		return tb, false
	}
	if err := json.Unmarshal(raw, &tb); err != nil {
		return tb, false
	}
	return tb, true
}

// listResponse is the envelope of every paginated endpoint.
type listResponse[T any] struct {
	Object     string `json:"object"`
	Results    []T    `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// database is the subset of the database object used to find its data
// sources.
type database struct {
	Object      string       `json:"object"`
	ID          string       `json:"id"`
	DataSources []DataSource `json:"data_sources"`
}

// DataSource is a named collection inside a database.
type DataSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
