package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// UpdatesFromPtrDTO collects the non-nil pointer fields of an update
// DTO into a gorm Updates map, keyed by the field's json tag (before
// any comma option). renames translates a json name to a differing
// column name, e.g. {"operations_lead_id": "lead_id"}; pass nil when
// the tags already match the schema.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	res := make(map[string]any)
	s := structOf(dto)
	if !s.IsValid() {
		return res
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if alt, ok := renames[name]; ok && alt != "" {
			name = alt
		}
		res[name] = fv.Elem().Interface()
	}
	return res
}

// ParseIntDefault parses a non-negative int query parameter, falling
// back to def on anything unparseable.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
