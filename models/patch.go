package models

import "fmt"

// PatchOp is a single field change: either Set (Value applies) or Unset
// (field cleared to NULL). Loose update documents are not accepted anywhere;
// every partial update goes through a Patch validated against the entity's
// field schema before it reaches the database.
type PatchOp struct {
	Field string `json:"field"`
	Value any    `json:"value,omitempty"`
	Unset bool   `json:"unset,omitempty"`
}

// Patch is an ordered list of field changes for one entity.
type Patch []PatchOp

// FieldKind describes the accepted value type for a patchable field.
type FieldKind int

const (
	FieldInt FieldKind = iota
	FieldString
)

// A FieldSchema maps column names to the value kind they accept and whether
// the column may be unset.
type FieldSchema map[string]struct {
	Kind     FieldKind
	Nullable bool
}

// ConfigFields is the patchable surface of Config.
var ConfigFields = FieldSchema{
	"minimum_games_per_player": {Kind: FieldInt},
	"points_gained":            {Kind: FieldInt},
	"points_lost":              {Kind: FieldInt},
	"base_points":              {Kind: FieldInt},
	"deck_limit":               {Kind: FieldInt},
	"dispute_role_ref":         {Kind: FieldString, Nullable: true},
}

// Apply validates the patch against schema and returns a column→value map
// suitable for a GORM Updates call. Unset ops map to nil (SQL NULL).
func (p Patch) Apply(schema FieldSchema) (map[string]any, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("patch is empty")
	}

	updates := make(map[string]any, len(p))
	for _, op := range p {
		spec, ok := schema[op.Field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", op.Field)
		}

		if op.Unset {
			if !spec.Nullable {
				return nil, fmt.Errorf("field %q cannot be unset", op.Field)
			}
			updates[op.Field] = nil
			continue
		}

		switch spec.Kind {
		case FieldInt:
			// JSON numbers decode as float64; accept whole floats and ints.
			switch v := op.Value.(type) {
			case float64:
				if v != float64(int(v)) {
					return nil, fmt.Errorf("field %q requires an integer", op.Field)
				}
				updates[op.Field] = int(v)
			case int:
				updates[op.Field] = v
			default:
				return nil, fmt.Errorf("field %q requires an integer", op.Field)
			}
		case FieldString:
			v, ok := op.Value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q requires a string", op.Field)
			}
			updates[op.Field] = v
		}
	}
	return updates, nil
}
