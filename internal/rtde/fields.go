package rtde

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeFields packs values into a data-package body in recipe order.
// Multi-byte integers and floats are big-endian, booleans a single 0/1
// byte, vectors the concatenation of their components, strings one length
// byte followed by the ASCII bytes. A missing value or a value whose Go
// type does not match the field type is a serialization error and nothing
// is emitted.
func EncodeFields(r *Recipe, values map[string]any) ([]byte, error) {
	size := 0
	for _, f := range r.fields {
		if s := f.Type.WireSize(); s != sizeDynamic {
			size += s
		}
	}

	buf := make([]byte, 0, size)
	for _, f := range r.fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no value for field %q", ErrSerialization, f.Name)
		}
		var err error
		buf, err = appendFieldValue(buf, f, v)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeFields is the inverse of EncodeFields. It consumes exactly the
// bytes the recipe requires: running short of data and leaving trailing
// bytes are both serialization errors.
func DecodeFields(r *Recipe, data []byte) (map[string]any, error) {
	values := make(map[string]any, len(r.fields))
	off := 0
	for _, f := range r.fields {
		v, n, err := decodeFieldValue(data[off:], f)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
		off += n
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after decoding %s recipe", ErrSerialization, len(data)-off, r.direction)
	}
	return values, nil
}

func mismatch(f Field, v any) error {
	return fmt.Errorf("%w: field %q expects %s, got %T", ErrSerialization, f.Name, f.Type, v)
}

func appendFieldValue(buf []byte, f Field, v any) ([]byte, error) {
	switch f.Type {
	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(f, v)
		}
		if b {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil

	case TypeUInt8:
		u, ok := v.(uint8)
		if !ok {
			return nil, mismatch(f, v)
		}
		return append(buf, u), nil

	case TypeUInt32:
		u, ok := v.(uint32)
		if !ok {
			return nil, mismatch(f, v)
		}
		return binary.BigEndian.AppendUint32(buf, u), nil

	case TypeUInt64:
		u, ok := v.(uint64)
		if !ok {
			return nil, mismatch(f, v)
		}
		return binary.BigEndian.AppendUint64(buf, u), nil

	case TypeInt32:
		i, ok := v.(int32)
		if !ok {
			return nil, mismatch(f, v)
		}
		return binary.BigEndian.AppendUint32(buf, uint32(i)), nil

	case TypeDouble:
		d, ok := v.(float64)
		if !ok {
			return nil, mismatch(f, v)
		}
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(d)), nil

	case TypeVector3D:
		vec, ok := v.(Vector3D)
		if !ok {
			return nil, mismatch(f, v)
		}
		for _, d := range vec {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(d))
		}
		return buf, nil

	case TypeVector6D:
		vec, ok := v.(Vector6D)
		if !ok {
			return nil, mismatch(f, v)
		}
		for _, d := range vec {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(d))
		}
		return buf, nil

	case TypeVector6Int32:
		vec, ok := v.(Vector6Int32)
		if !ok {
			return nil, mismatch(f, v)
		}
		for _, i := range vec {
			buf = binary.BigEndian.AppendUint32(buf, uint32(i))
		}
		return buf, nil

	case TypeVector6UInt32:
		vec, ok := v.(Vector6UInt32)
		if !ok {
			return nil, mismatch(f, v)
		}
		for _, u := range vec {
			buf = binary.BigEndian.AppendUint32(buf, u)
		}
		return buf, nil

	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(f, v)
		}
		if len(s) > 0xFF {
			return nil, fmt.Errorf("%w: field %q string of %d bytes exceeds length prefix", ErrSerialization, f.Name, len(s))
		}
		buf = append(buf, byte(len(s)))
		return append(buf, s...), nil

	default:
		return nil, mismatch(f, v)
	}
}

func short(f Field, want, have int) error {
	return fmt.Errorf("%w: field %q needs %d bytes, %d remain", ErrSerialization, f.Name, want, have)
}

func decodeFieldValue(data []byte, f Field) (any, int, error) {
	need := f.Type.WireSize()
	if need != sizeDynamic && len(data) < need {
		return nil, 0, short(f, need, len(data))
	}

	switch f.Type {
	case TypeBool:
		return data[0] != 0, 1, nil
	case TypeUInt8:
		return data[0], 1, nil
	case TypeUInt32:
		return binary.BigEndian.Uint32(data), 4, nil
	case TypeUInt64:
		return binary.BigEndian.Uint64(data), 8, nil
	case TypeInt32:
		return int32(binary.BigEndian.Uint32(data)), 4, nil
	case TypeDouble:
		return math.Float64frombits(binary.BigEndian.Uint64(data)), 8, nil
	case TypeVector3D:
		var vec Vector3D
		for i := range vec {
			vec[i] = math.Float64frombits(binary.BigEndian.Uint64(data[i*8:]))
		}
		return vec, 24, nil
	case TypeVector6D:
		var vec Vector6D
		for i := range vec {
			vec[i] = math.Float64frombits(binary.BigEndian.Uint64(data[i*8:]))
		}
		return vec, 48, nil
	case TypeVector6Int32:
		var vec Vector6Int32
		for i := range vec {
			vec[i] = int32(binary.BigEndian.Uint32(data[i*4:]))
		}
		return vec, 24, nil
	case TypeVector6UInt32:
		var vec Vector6UInt32
		for i := range vec {
			vec[i] = binary.BigEndian.Uint32(data[i*4:])
		}
		return vec, 24, nil
	case TypeString:
		if len(data) < 1 {
			return nil, 0, short(f, 1, 0)
		}
		n := int(data[0])
		if len(data) < 1+n {
			return nil, 0, short(f, 1+n, len(data))
		}
		return string(data[1 : 1+n]), 1 + n, nil
	default:
		return nil, 0, fmt.Errorf("%w: field %q has unsupported type %s", ErrSerialization, f.Name, f.Type)
	}
}

// ParseValue converts a textual representation to the Go value a field of
// type t expects. Vectors are comma-separated component lists. Used by the
// CLI to build input values from command-line arguments.
func ParseValue(t FieldType, s string) (any, error) {
	switch t {
	case TypeBool:
		return strconv.ParseBool(s)
	case TypeUInt8:
		u, err := strconv.ParseUint(s, 10, 8)
		return uint8(u), err
	case TypeUInt32:
		u, err := strconv.ParseUint(s, 10, 32)
		return uint32(u), err
	case TypeUInt64:
		return strconv.ParseUint(s, 10, 64)
	case TypeInt32:
		i, err := strconv.ParseInt(s, 10, 32)
		return int32(i), err
	case TypeDouble:
		return strconv.ParseFloat(s, 64)
	case TypeVector3D:
		var vec Vector3D
		err := parseVector(s, len(vec), func(i int, c string) error {
			d, err := strconv.ParseFloat(c, 64)
			vec[i] = d
			return err
		})
		return vec, err
	case TypeVector6D:
		var vec Vector6D
		err := parseVector(s, len(vec), func(i int, c string) error {
			d, err := strconv.ParseFloat(c, 64)
			vec[i] = d
			return err
		})
		return vec, err
	case TypeVector6Int32:
		var vec Vector6Int32
		err := parseVector(s, len(vec), func(i int, c string) error {
			n, err := strconv.ParseInt(c, 10, 32)
			vec[i] = int32(n)
			return err
		})
		return vec, err
	case TypeVector6UInt32:
		var vec Vector6UInt32
		err := parseVector(s, len(vec), func(i int, c string) error {
			n, err := strconv.ParseUint(c, 10, 32)
			vec[i] = uint32(n)
			return err
		})
		return vec, err
	case TypeString:
		return s, nil
	default:
		return nil, fmt.Errorf("cannot parse value for type %s", t)
	}
}

func parseVector(s string, arity int, set func(int, string) error) error {
	parts := strings.Split(s, ",")
	if len(parts) != arity {
		return fmt.Errorf("expected %d comma-separated components, got %d", arity, len(parts))
	}
	for i, p := range parts {
		if err := set(i, strings.TrimSpace(p)); err != nil {
			return err
		}
	}
	return nil
}
