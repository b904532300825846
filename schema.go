package esdex

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

const tagKey = "esdex"

var timeType = reflect.TypeOf(time.Time{})

// SchemaFromStruct derives a resource schema from T's struct tags.
//
// Tag form: esdex:"field_name[,type][,ignore_malformed]". When the
// type part is omitted it is inferred from the Go type: strings become
// text, integers integer, time.Time datetime, nested structs dict,
// slices list. Untagged fields and "-" are skipped. Join fields carry
// relation declarations, which tags cannot express; declare those in a
// Schema literal instead.
func SchemaFromStruct[T any]() (Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("esdex: type %v is not a struct", t)
	}
	return structSchema(t)
}

func structSchema(t reflect.Type) (Schema, error) {
	out := make(Schema)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		name, field, err := parseFieldTag(f, tag)
		if err != nil {
			return nil, err
		}
		out[name] = field
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("esdex: no fields with a %q tag in %s", tagKey, t)
	}
	return out, nil
}

// parseFieldTag processes a single struct field's esdex tag.
func parseFieldTag(f reflect.StructField, tag string) (string, Field, error) {
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = strings.ToLower(f.Name)
	}

	var explicit FieldType
	ignoreMalformed := false
	for _, part := range parts[1:] {
		if part == "ignore_malformed" {
			ignoreMalformed = true
			continue
		}
		explicit = FieldType(part)
	}

	field, err := fieldFor(f.Type, explicit)
	if err != nil {
		return "", Field{}, fmt.Errorf("esdex: field %s: %w", f.Name, err)
	}
	if ignoreMalformed {
		if field.Type != Datetime {
			return "", Field{}, fmt.Errorf("esdex: field %s: ignore_malformed applies to datetime fields only", f.Name)
		}
		flag := true
		field.IgnoreMalformed = &flag
	}
	return name, field, nil
}

func fieldFor(t reflect.Type, explicit FieldType) (Field, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch explicit {
	case "":
		// fall through to inference
	case Text, Keyword, Datetime, ObjectID, Integer:
		return Field{Type: explicit}, nil
	case Dict:
		if t.Kind() == reflect.Struct && t != timeType {
			nested, err := structSchema(t)
			if err != nil {
				return Field{}, err
			}
			return Field{Type: Dict, Schema: nested}, nil
		}
		return Field{Type: Dict}, nil
	case List:
		return listFieldFor(t)
	case Join:
		return Field{}, fmt.Errorf("join fields need relation declarations, use a Schema literal")
	default:
		return Field{}, fmt.Errorf("unknown field type %q", explicit)
	}

	switch {
	case t == timeType:
		return Field{Type: Datetime}, nil
	case t.Kind() == reflect.String:
		return Field{Type: Text}, nil
	case isInteger(t.Kind()):
		return Field{Type: Integer}, nil
	case t.Kind() == reflect.Struct:
		nested, err := structSchema(t)
		if err != nil {
			return Field{}, err
		}
		return Field{Type: Dict, Schema: nested}, nil
	case t.Kind() == reflect.Map:
		return Field{Type: Dict}, nil
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return listFieldFor(t)
	default:
		return Field{}, fmt.Errorf("cannot infer a field type for %s, tag one explicitly or use a Mapping override", t)
	}
}

func listFieldFor(t reflect.Type) (Field, error) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return Field{Type: List}, nil
	}
	item, err := fieldFor(t.Elem(), "")
	if err != nil {
		return Field{}, err
	}
	return Field{Type: List, Items: &item}, nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
