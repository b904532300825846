// Package mapping derives engine mapping documents from resource schemas.
package mapping

import "github.com/kailas-cloud/esdex/internal/schema"

// CatchAll is the synthetic field text and keyword values are copied to,
// so one free-text query can match across many fields.
const CatchAll = "all"

// Field returns the mapping fragment for a single field descriptor.
// Rules apply in order, first match wins; ok is false when the field is
// left to the engine's dynamic mapping.
func Field(f schema.Field) (map[string]any, bool) {
	switch {
	case f.Mapping != nil:
		return f.Mapping, true
	case f.Type == schema.Dict && f.Schema != nil:
		return Properties(f.Schema), true
	case f.Type == schema.List && f.Items != nil && f.Items.Schema != nil:
		return Properties(f.Items.Schema), true
	case f.Type == schema.Join:
		return map[string]any{"type": "join", "relations": f.Relations}, true
	case f.Type == schema.Datetime && f.IgnoreMalformed != nil:
		// Sorting on a date field with malformed values fails outright
		// unless the index tolerates them.
		return map[string]any{"type": "date", "ignore_malformed": *f.IgnoreMalformed}, true
	case f.Type == schema.Datetime:
		return map[string]any{"type": "date"}, true
	case f.Type == schema.Text:
		return map[string]any{"type": "text", "copy_to": CatchAll}, true
	case f.Type == schema.Keyword:
		return map[string]any{"type": "keyword", "copy_to": CatchAll}, true
	default:
		return nil, false
	}
}

// Properties maps every field of a schema and wraps them in a properties
// document. Fields without a derivable fragment are omitted.
func Properties(s schema.Schema) map[string]any {
	props := make(map[string]any, len(s))
	for name, f := range s {
		if fragment, ok := Field(f); ok {
			props[name] = fragment
		}
	}
	return map[string]any{"properties": props}
}

// Resource builds the full mapping document for a resource schema: the
// derived properties plus the always-present audit timestamps, with any
// identifier mapping removed (the identifier is engine-native).
func Resource(s schema.Schema) map[string]any {
	doc := Properties(s)
	props, _ := doc["properties"].(map[string]any)

	created, _ := Field(schema.Field{Type: schema.Datetime})
	updated, _ := Field(schema.Field{Type: schema.Datetime})
	props[schema.DateCreated] = created
	props[schema.LastUpdated] = updated

	delete(props, schema.IDField)
	return doc
}
