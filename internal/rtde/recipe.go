package rtde

import "fmt"

// Direction tells which way a recipe's data packages flow.
type Direction int

const (
	// DirectionOutput labels controller→client recipes (state fields).
	DirectionOutput Direction = iota
	// DirectionInput labels client→controller recipes (command fields).
	DirectionInput
)

func (d Direction) String() string {
	switch d {
	case DirectionOutput:
		return "output"
	case DirectionInput:
		return "input"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Field is one named, typed slot in a recipe.
type Field struct {
	Name string
	Type FieldType
}

// Recipe is an ordered field list defining the exact wire layout of one
// data package. Immutable after BuildRecipe; the controller-assigned id is
// session state and lives in the Client, not here.
type Recipe struct {
	direction Direction
	fields    []Field
}

// BuildRecipe validates parallel name/type-name lists into a Recipe.
// Every type name must resolve to a known FieldType and names must be
// unique within the recipe.
func BuildRecipe(dir Direction, names, typeNames []string) (*Recipe, error) {
	if len(names) != len(typeNames) {
		return nil, fmt.Errorf("%w: %d field names but %d types", ErrConfig, len(names), len(typeNames))
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: recipe has no fields", ErrConfig)
	}

	fields := make([]Field, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name at position %d", ErrConfig, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrConfig, name)
		}
		seen[name] = struct{}{}

		ft, err := ParseFieldType(typeNames[i])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Type: ft})
	}

	return &Recipe{direction: dir, fields: fields}, nil
}

// Direction returns which way this recipe's data packages flow.
func (r *Recipe) Direction() Direction { return r.direction }

// Fields returns the ordered field list as a copy.
func (r *Recipe) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the field names in wire order.
func (r *Recipe) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// TypeNames returns the declared type names in wire order.
func (r *Recipe) TypeNames() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Type.String()
	}
	return out
}

// wireSize returns the total encoded width of one data package body and
// whether that width is fixed (false when the recipe carries a STRING).
func (r *Recipe) wireSize() (int, bool) {
	total := 0
	for _, f := range r.fields {
		s := f.Type.WireSize()
		if s == sizeDynamic {
			return 0, false
		}
		total += s
	}
	return total, true
}
