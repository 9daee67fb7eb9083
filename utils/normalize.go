package utils

import (
	"reflect"
	"strings"
)

// normalizeValue trims a string value and rounds a float64 value.
// Anything else is left alone.
func normalizeValue(v reflect.Value) {
	if !v.CanSet() {
		return
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.TrimSpace(v.String()))
	case reflect.Float64:
		v.SetFloat(Round2(v.Float()))
	}
}

// NormalizeDTO trims string fields and rounds float64 fields of a
// create DTO (pointer to a struct with plain fields).
func NormalizeDTO(dto any) {
	s := structOf(dto)
	if !s.IsValid() {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		normalizeValue(s.Field(i))
	}
}

// NormalizePtrDTO does the same for an update DTO whose fields are
// pointers. Nil fields stay nil so a partial update leaves the
// column untouched.
func NormalizePtrDTO(dto any) {
	s := structOf(dto)
	if !s.IsValid() {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if f.Kind() == reflect.Ptr && !f.IsNil() {
			normalizeValue(f.Elem())
		}
	}
}

func structOf(dto any) reflect.Value {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return reflect.Value{}
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return s
}
