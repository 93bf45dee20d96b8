package tool

import (
	"reflect"
	"strings"
)

// SchemaFor derives an object Schema from the exported fields of T.
func SchemaFor[T any]() *Schema {
	var zero T
	return schemaForType(reflect.TypeOf(zero))
}

func schemaForType(t reflect.Type) *Schema {
	if t == nil {
		return &Schema{Type: TypeObject}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		s := &Schema{Type: TypeObject, Properties: map[string]*Schema{}}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, optional, skip := jsonName(field)
			if skip {
				continue
			}
			prop := schemaForType(field.Type)
			prop.Description = field.Tag.Get("description")
			if enum := field.Tag.Get("enum"); enum != "" {
				prop.Enum = strings.Split(enum, ",")
			}
			s.Properties[name] = prop
			if !optional {
				s.Required = append(s.Required, name)
			}
		}
		return s
	case reflect.String:
		return &Schema{Type: TypeString}
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeInteger}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeNumber}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: TypeArray, Items: schemaForType(t.Elem())}
	case reflect.Map, reflect.Interface:
		return &Schema{Type: TypeObject}
	default:
		return &Schema{Type: TypeString}
	}
}

func jsonName(field reflect.StructField) (name string, optional, skip bool) {
	name = field.Name
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false, true
	}
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			optional = true
		}
	}
	return name, optional, false
}
