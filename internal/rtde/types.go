// Package rtde implements a client for the Real-Time Data Exchange protocol:
// a persistent point-to-point session in which a controller streams typed
// state fields to the client and accepts typed command fields back.
//
// Wire packet layout:
//
//	Offset  Size  Description
//	------  ----  -----------
//	0       1     Command byte (see Cmd* constants in packet.go)
//	1       2     Total packet length including this header (big-endian uint16)
//	3       …     Payload
//
// Field values inside a data package are packed back to back in recipe
// order; position, not name, determines the layout.
package rtde

import "fmt"

// FieldType is the closed set of value types a recipe field can carry.
// Every variant has a statically known wire width (strings are
// self-describing: one length byte plus that many ASCII bytes), so encode
// and decode never need runtime type inspection.
type FieldType int

const (
	TypeBool FieldType = iota
	TypeUInt8
	TypeUInt32
	TypeUInt64
	TypeInt32
	TypeDouble
	TypeVector3D
	TypeVector6D
	TypeVector6Int32
	TypeVector6UInt32
	TypeString
)

// Fixed-size vector value types. Arrays, not slices, so a value always
// carries exactly its wire arity.
type (
	Vector3D      [3]float64
	Vector6D      [6]float64
	Vector6Int32  [6]int32
	Vector6UInt32 [6]uint32
)

// sizeDynamic marks a type whose wire width depends on the value.
const sizeDynamic = -1

var fieldTypeTable = [...]struct {
	name string
	size int
}{
	TypeBool:          {"BOOL", 1},
	TypeUInt8:         {"UINT8", 1},
	TypeUInt32:        {"UINT32", 4},
	TypeUInt64:        {"UINT64", 8},
	TypeInt32:         {"INT32", 4},
	TypeDouble:        {"DOUBLE", 8},
	TypeVector3D:      {"VECTOR3D", 24},
	TypeVector6D:      {"VECTOR6D", 48},
	TypeVector6Int32:  {"VECTOR6INT32", 24},
	TypeVector6UInt32: {"VECTOR6UINT32", 24},
	TypeString:        {"STRING", sizeDynamic},
}

// ParseFieldType resolves a declared type name to a FieldType.
// Unknown names are a configuration error.
func ParseFieldType(name string) (FieldType, error) {
	for t, info := range fieldTypeTable {
		if info.name == name {
			return FieldType(t), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field type %q", ErrConfig, name)
}

func (t FieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeTable) {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeTable[t].name
}

// WireSize returns the encoded width in bytes, or -1 when the width is
// value-dependent (STRING).
func (t FieldType) WireSize() int {
	return fieldTypeTable[t].size
}
