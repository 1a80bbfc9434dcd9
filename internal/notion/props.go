package notion

import "strings"

// Extractors turn one property into a plain Go value. Every extractor
// dispatches on Property.Type and returns the zero value ("" or nil) for
// absent, mistyped or malformed input. None of them fail.

// PlainText concatenates the spans of a title or rich_text property.
func PlainText(p *Property) string {
	if p == nil {
		return ""
	}
	var spans []RichText
	switch p.Type {
	case "title", "rich_text":
		if !p.payload(p.Type, &spans) {
			return ""
		}
	default:
		return ""
	}
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Content())
	}
	return b.String()
}

// Choice returns the option name of a select or status property.
func Choice(p *Property) string {
	if p == nil {
		return ""
	}
	var opt *Option
	switch p.Type {
	case "select", "status":
		if !p.payload(p.Type, &opt) || opt == nil {
			return ""
		}
	default:
		return ""
	}
	return opt.Name
}

// MultiChoice returns the option names of a multi_select property. A
// select property is read as a one-element collection.
func MultiChoice(p *Property) []string {
	if p == nil {
		return nil
	}
	switch p.Type {
	case "multi_select":
		var opts []Option
		if !p.payload("multi_select", &opts) {
			return nil
		}
		names := make([]string, 0, len(opts))
		for _, opt := range opts {
			if opt.Name != "" {
				names = append(names, opt.Name)
			}
		}
		if len(names) == 0 {
			return nil
		}
		return names
	case "select":
		if name := Choice(p); name != "" {
			return []string{name}
		}
	}
	return nil
}

// URL returns the value of a url property.
func URL(p *Property) string {
	var u *string
	if !p.payload("url", &u) || u == nil {
		return ""
	}
	return *u
}

// Date returns the start of a date property.
func Date(p *Property) string {
	var d *DateValue
	if !p.payload("date", &d) || d == nil {
		return ""
	}
	return d.Start
}

// RelationIDs returns the page ids of a relation property.
func RelationIDs(p *Property) []string {
	var refs []Reference
	if !p.payload("relation", &refs) {
		return nil
	}
	return referenceIDs(refs)
}

// PeopleIDs returns the user ids of a people property.
func PeopleIDs(p *Property) []string {
	var refs []Reference
	if !p.payload("people", &refs) {
		return nil
	}
	return referenceIDs(refs)
}

func referenceIDs(refs []Reference) []string {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// Writers build the request payload for one property value.

// TitleValue builds a title property.
func TitleValue(s string) map[string]any {
	return map[string]any{"title": textSpans(s)}
}

// RichTextValue builds a rich_text property. An empty string clears it.
func RichTextValue(s string) map[string]any {
	return map[string]any{"rich_text": textSpans(s)}
}

// SelectValue builds a select property.
func SelectValue(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

// StatusValue builds a status property.
func StatusValue(name string) map[string]any {
	return map[string]any{"status": map[string]any{"name": name}}
}

// MultiSelectValue builds a multi_select property.
func MultiSelectValue(names ...string) map[string]any {
	opts := make([]map[string]any, 0, len(names))
	for _, name := range names {
		opts = append(opts, map[string]any{"name": name})
	}
	return map[string]any{"multi_select": opts}
}

// RelationValue builds a relation property. An empty list clears it.
func RelationValue(ids []string) map[string]any {
	return map[string]any{"relation": references(ids)}
}

// PeopleValue builds a people property.
func PeopleValue(ids []string) map[string]any {
	return map[string]any{"people": references(ids)}
}

// DateStartValue builds a date property with only a start.
func DateStartValue(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}

// URLValue builds a url property.
func URLValue(u string) map[string]any {
	return map[string]any{"url": u}
}

func references(ids []string) []map[string]any {
	refs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]any{"id": id})
	}
	return refs
}

// textSpans splits s into text objects no longer than MaxTextLength.
func textSpans(s string) []map[string]any {
	chunks := ChunkText(s, MaxTextLength)
	spans := make([]map[string]any, 0, len(chunks))
	for _, chunk := range chunks {
		spans = append(spans, map[string]any{
			"type": "text",
			"text": map[string]any{"content": chunk},
		})
	}
	return spans
}
