package util

import (
	"reflect"

	"github.com/pkg/errors"
)

// IsStructInitialized reports whether all exported fields of the given struct
// pointer are non-zero. Fields tagged `wire:"-"` are initialized outside the
// dependency graph and are skipped.
func IsStructInitialized(s interface{}) error {
	value := reflect.ValueOf(s)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return errors.New("expected a struct")
	}

	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := structType.Field(i)
		if field.Tag.Get("wire") == "-" {
			continue
		}
		if value.Field(i).IsZero() {
			return errors.Errorf("field %s is not initialized", field.Name)
		}
	}
	return nil
}
