package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FieldKind tells the form how to present and parse a field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldMultiline
	FieldNumber
	FieldInteger
	FieldBool
	FieldTags
	FieldReference
)

// Field binds one editable json field of T to string form values.
type Field[T Entity] struct {
	Name  string
	Label string
	Kind  FieldKind
	Get   func(T) string
	// Set parses value into the entity. A parse failure is a field error.
	Set func(T, string) error
}

// Column is one list-view column.
type Column[T Entity] struct {
	Title string
	Width int
	Value func(T) string
}

// Schema describes everything the admin layer needs to manage a variant.
type Schema[T Entity] struct {
	Kind      Kind
	Title     string
	Path      string
	Singleton bool
	New       func() T
	Label     func(T) string
	Columns   []Column[T]
	Fields    []Field[T]
}

// Field looks up a field descriptor by json name.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Clone deep-copies v through its json encoding.
func (s Schema[T]) Clone(v T) (T, error) {
	out := s.New()
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("clone %s: %w", s.Kind, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return out, fmt.Errorf("clone %s: %w", s.Kind, err)
	}
	return out, nil
}

func TextField[T Entity](name, label string, ref func(T) *string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldText,
		Get:   func(v T) string { return *ref(v) },
		Set: func(v T, s string) error {
			*ref(v) = strings.TrimSpace(s)
			return nil
		},
	}
}

func MultilineField[T Entity](name, label string, ref func(T) *string) Field[T] {
	f := TextField(name, label, ref)
	f.Kind = FieldMultiline
	f.Set = func(v T, s string) error {
		*ref(v) = strings.TrimRight(s, " \t\r\n")
		return nil
	}
	return f
}

func NumberField[T Entity](name, label string, ref func(T) *float64) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldNumber,
		Get:   func(v T) string { return strconv.FormatFloat(*ref(v), 'f', -1, 64) },
		Set: func(v T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				*ref(v) = 0
				return nil
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", name)
			}
			*ref(v) = n
			return nil
		},
	}
}

func IntegerField[T Entity](name, label string, ref func(T) *int) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldInteger,
		Get: func(v T) string {
			if *ref(v) == 0 {
				return ""
			}
			return strconv.Itoa(*ref(v))
		},
		Set: func(v T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				*ref(v) = 0
				return nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s must be a whole number", name)
			}
			*ref(v) = n
			return nil
		},
	}
}

func BoolField[T Entity](name, label string, ref func(T) *bool) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldBool,
		Get:   func(v T) string { return strconv.FormatBool(*ref(v)) },
		Set: func(v T, s string) error {
			b, ok := parseBool(s)
			if !ok {
				return fmt.Errorf("%s must be yes or no", name)
			}
			*ref(v) = b
			return nil
		},
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "no", "n", "0", "off":
		return false, true
	case "true", "yes", "y", "1", "on":
		return true, true
	default:
		return false, false
	}
}

// TagsField edits a string list as comma separated values.
func TagsField[T Entity](name, label string, ref func(T) *[]string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldTags,
		Get:   func(v T) string { return strings.Join(*ref(v), ", ") },
		Set: func(v T, s string) error {
			var tags []string
			for _, part := range strings.Split(s, ",") {
				if tag := strings.TrimSpace(part); tag != "" {
					tags = append(tags, tag)
				}
			}
			*ref(v) = tags
			return nil
		},
	}
}

// ReferenceField edits an optional id of another entity.
func ReferenceField[T Entity](name, label string, ref func(T) **int64) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  FieldReference,
		Get: func(v T) string {
			if p := *ref(v); p != nil {
				return strconv.FormatInt(*p, 10)
			}
			return ""
		},
		Set: func(v T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				*ref(v) = nil
				return nil
			}
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("%s must be a positive id", name)
			}
			*ref(v) = &id
			return nil
		},
	}
}
