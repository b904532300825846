// Package schema describes per-resource field schemas: the closed set of
// semantic field kinds the mapper and normalizer understand.
package schema

import "fmt"

// Type is the semantic kind of a schema field.
type Type string

// Field type constants.
const (
	Text     Type = "text"
	Keyword  Type = "keyword"
	Datetime Type = "datetime"
	Dict     Type = "dict"
	List     Type = "list"
	Join     Type = "join"
	ObjectID Type = "objectid"
	Integer  Type = "integer"
)

var knownTypes = map[Type]bool{
	Text: true, Keyword: true, Datetime: true, Dict: true,
	List: true, Join: true, ObjectID: true, Integer: true,
}

// Audit timestamp field names, always present on stored documents.
const (
	DateCreated = "_created"
	LastUpdated = "_updated"
)

// IDField is the engine-native identifier key on normalized documents.
const IDField = "_id"

// TypeField is the legacy hit-type key on normalized documents.
const TypeField = "_type"

// Field is one schema field descriptor.
type Field struct {
	Type Type
	// Schema is the nested schema of a dict field.
	Schema Schema
	// Items describes the element of a list field.
	Items *Field
	// Mapping, when set, is returned verbatim instead of any derived
	// mapping fragment.
	Mapping map[string]any
	// IgnoreMalformed, when non-nil, is carried onto datetime mappings.
	IgnoreMalformed *bool
	// Relations declares join parent/child membership. Values may be a
	// single child name or a list of them.
	Relations map[string]any
}

// Schema maps field names to descriptors.
type Schema map[string]Field

// Validate checks every descriptor against the closed type set.
func (s Schema) Validate() error {
	for name, f := range s {
		if err := f.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (f Field) validate(name string) error {
	if f.Type == "" && f.Mapping == nil {
		return fmt.Errorf("field %q: type is required", name)
	}
	if f.Type != "" && !knownTypes[f.Type] {
		return fmt.Errorf("field %q: unknown type %q", name, f.Type)
	}
	if f.Type == Join && len(f.Relations) == 0 {
		return fmt.Errorf("field %q: join requires relations", name)
	}
	if err := f.Schema.Validate(); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if f.Items != nil {
		if err := f.Items.validate(name + "[]"); err != nil {
			return err
		}
	}
	return nil
}

// DateFields lists the datetime-typed field names of a schema, always
// including the audit timestamps first.
func (s Schema) DateFields() []string {
	dates := []string{LastUpdated, DateCreated}
	for name, f := range s {
		if f.Type == Datetime {
			dates = append(dates, name)
		}
	}
	return dates
}

// JoinField returns the name of the join-typed field, if any.
func (s Schema) JoinField() (string, bool) {
	for name, f := range s {
		if f.Type == Join {
			return name, true
		}
	}
	return "", false
}

// Merge overlays over onto base and returns the union. Descriptors from
// over win on name collisions. Neither input is modified.
func Merge(base, over Schema) Schema {
	if len(base) == 0 {
		return over
	}
	merged := make(Schema, len(base)+len(over))
	for name, f := range base {
		merged[name] = f
	}
	for name, f := range over {
		merged[name] = f
	}
	return merged
}
