package schema

import (
	"fmt"
	"strings"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDBoolean
	TypeIDByte
	TypeIDShort
	TypeIDInteger
	TypeIDLong
	TypeIDFloat
	TypeIDDouble
	TypeIDString
	TypeIDBinary
	TypeIDTimestamp
	TypeIDDate
	TypeIDDecimal
	TypeIDArray
	TypeIDMap
	TypeIDStruct
	TypeIDUserDefined
)

// ExternalDescriptor is the opaque component a user-defined type contributes.
// Exports that can't carry opaque types flatten it through SQLType.
type ExternalDescriptor interface {
	Name() string
	SQLType() Type
}

type Type struct {
	TypeID    TypeID
	Null      struct{}
	Boolean   struct{}
	Byte      struct{}
	Short     struct{}
	Integer   struct{}
	Long      struct{}
	Float     struct{}
	Double    struct{}
	Str       struct{}
	Binary    struct{}
	Timestamp struct{}
	Date      struct{}
	Decimal   struct {
		Precision int
		Scale     int
	}
	Array struct {
		Element      *Type
		ContainsNull bool
	}
	Map struct {
		Key               *Type
		Value             *Type
		ValueContainsNull bool
	}
	Struct struct {
		Fields []Field
	}
	UserDefined struct {
		Descriptor ExternalDescriptor
	}
}

// Field is one position of a Struct. The field sequence mirrors the record's
// declared order and is never reordered after construction.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema is the unit every derivation step returns: a data type plus whether
// a value at this position may be absent. Pure value semantics.
type Schema struct {
	Type     Type
	Nullable bool
}

var (
	Null      Type = Type{TypeID: TypeIDNull}
	Boolean   Type = Type{TypeID: TypeIDBoolean}
	Byte      Type = Type{TypeID: TypeIDByte}
	Short     Type = Type{TypeID: TypeIDShort}
	Integer   Type = Type{TypeID: TypeIDInteger}
	Long      Type = Type{TypeID: TypeIDLong}
	Float     Type = Type{TypeID: TypeIDFloat}
	Double    Type = Type{TypeID: TypeIDDouble}
	String    Type = Type{TypeID: TypeIDString}
	Binary    Type = Type{TypeID: TypeIDBinary}
	Timestamp Type = Type{TypeID: TypeIDTimestamp}
	Date      Type = Type{TypeID: TypeIDDate}
)

// DecimalDefault is the precision and scale used when a source type carries
// an arbitrary-precision decimal with no declared bounds.
var DecimalDefault = DecimalOf(38, 18)

func DecimalOf(precision, scale int) Type {
	return Type{
		TypeID: TypeIDDecimal,
		Decimal: struct {
			Precision int
			Scale     int
		}{Precision: precision, Scale: scale},
	}
}

func ArrayOf(element Type, containsNull bool) Type {
	return Type{
		TypeID: TypeIDArray,
		Array: struct {
			Element      *Type
			ContainsNull bool
		}{Element: &element, ContainsNull: containsNull},
	}
}

func MapOf(key, value Type, valueContainsNull bool) Type {
	return Type{
		TypeID: TypeIDMap,
		Map: struct {
			Key               *Type
			Value             *Type
			ValueContainsNull bool
		}{Key: &key, Value: &value, ValueContainsNull: valueContainsNull},
	}
}

func StructOf(fields ...Field) Type {
	return Type{
		TypeID: TypeIDStruct,
		Struct: struct{ Fields []Field }{Fields: fields},
	}
}

func UserDefinedOf(descriptor ExternalDescriptor) Type {
	return Type{
		TypeID:      TypeIDUserDefined,
		UserDefined: struct{ Descriptor ExternalDescriptor }{Descriptor: descriptor},
	}
}

func (t Type) Equals(other Type) bool {
	if t.TypeID != other.TypeID {
		return false
	}
	switch t.TypeID {
	case TypeIDDecimal:
		return t.Decimal == other.Decimal
	case TypeIDArray:
		if t.Array.ContainsNull != other.Array.ContainsNull {
			return false
		}
		return t.Array.Element.Equals(*other.Array.Element)
	case TypeIDMap:
		if t.Map.ValueContainsNull != other.Map.ValueContainsNull {
			return false
		}
		return t.Map.Key.Equals(*other.Map.Key) && t.Map.Value.Equals(*other.Map.Value)
	case TypeIDStruct:
		if len(t.Struct.Fields) != len(other.Struct.Fields) {
			return false
		}
		for i := range t.Struct.Fields {
			if t.Struct.Fields[i].Name != other.Struct.Fields[i].Name {
				return false
			}
			if t.Struct.Fields[i].Nullable != other.Struct.Fields[i].Nullable {
				return false
			}
			if !t.Struct.Fields[i].Type.Equals(other.Struct.Fields[i].Type) {
				return false
			}
		}
		return true
	case TypeIDUserDefined:
		return t.UserDefined.Descriptor.Name() == other.UserDefined.Descriptor.Name()
	default:
		return true
	}
}

func (s Schema) Equals(other Schema) bool {
	return s.Nullable == other.Nullable && s.Type.Equals(other.Type)
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDNull:
		return "Null"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDByte:
		return "Byte"
	case TypeIDShort:
		return "Short"
	case TypeIDInteger:
		return "Integer"
	case TypeIDLong:
		return "Long"
	case TypeIDFloat:
		return "Float"
	case TypeIDDouble:
		return "Double"
	case TypeIDString:
		return "String"
	case TypeIDBinary:
		return "Binary"
	case TypeIDTimestamp:
		return "Timestamp"
	case TypeIDDate:
		return "Date"
	case TypeIDDecimal:
		return fmt.Sprintf("Decimal(%d, %d)", t.Decimal.Precision, t.Decimal.Scale)
	case TypeIDArray:
		if t.Array.ContainsNull {
			return fmt.Sprintf("[%s?]", *t.Array.Element)
		}
		return fmt.Sprintf("[%s]", *t.Array.Element)
	case TypeIDMap:
		if t.Map.ValueContainsNull {
			return fmt.Sprintf("(%s -> %s?)", *t.Map.Key, *t.Map.Value)
		}
		return fmt.Sprintf("(%s -> %s)", *t.Map.Key, *t.Map.Value)
	case TypeIDStruct:
		fieldStrings := make([]string, len(t.Struct.Fields))
		for i, field := range t.Struct.Fields {
			if field.Nullable {
				fieldStrings[i] = fmt.Sprintf("%s: %s?", field.Name, field.Type)
			} else {
				fieldStrings[i] = fmt.Sprintf("%s: %s", field.Name, field.Type)
			}
		}
		return fmt.Sprintf("{%s}", strings.Join(fieldStrings, "; "))
	case TypeIDUserDefined:
		return fmt.Sprintf("UserDefined(%s)", t.UserDefined.Descriptor.Name())
	}
	panic("impossible, type switch bug")
}

func (s Schema) String() string {
	if s.Nullable {
		return fmt.Sprintf("%s?", s.Type)
	}
	return s.Type.String()
}
