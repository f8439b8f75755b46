package arrowconv

import (
	"github.com/apache/arrow/go/v13/arrow"

	"github.com/tabledriver/typeschema/schema"
)

// ToArrowSchema maps a derived field list to the arrow schema a columnar
// consumer works with.
func ToArrowSchema(fields []schema.Field) *arrow.Schema {
	arrowFields := make([]arrow.Field, len(fields))
	for i, field := range fields {
		arrowFields[i] = ToArrowField(field)
	}
	return arrow.NewSchema(arrowFields, nil)
}

func ToArrowField(field schema.Field) arrow.Field {
	return arrow.Field{
		Name:     field.Name,
		Nullable: field.Nullable,
		Type:     ToArrowType(field.Type),
	}
}

func ToArrowType(t schema.Type) arrow.DataType {
	switch t.TypeID {
	case schema.TypeIDNull:
		return arrow.Null
	case schema.TypeIDBoolean:
		return arrow.FixedWidthTypes.Boolean
	case schema.TypeIDByte:
		return arrow.PrimitiveTypes.Int8
	case schema.TypeIDShort:
		return arrow.PrimitiveTypes.Int16
	case schema.TypeIDInteger:
		return arrow.PrimitiveTypes.Int32
	case schema.TypeIDLong:
		return arrow.PrimitiveTypes.Int64
	case schema.TypeIDFloat:
		return arrow.PrimitiveTypes.Float32
	case schema.TypeIDDouble:
		return arrow.PrimitiveTypes.Float64
	case schema.TypeIDString:
		return arrow.BinaryTypes.String
	case schema.TypeIDBinary:
		return arrow.BinaryTypes.Binary
	case schema.TypeIDTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case schema.TypeIDDate:
		return arrow.FixedWidthTypes.Date32
	case schema.TypeIDDecimal:
		return &arrow.Decimal128Type{
			Precision: int32(t.Decimal.Precision),
			Scale:     int32(t.Decimal.Scale),
		}
	case schema.TypeIDArray:
		return arrow.ListOf(ToArrowType(*t.Array.Element))
	case schema.TypeIDMap:
		return arrow.MapOf(ToArrowType(*t.Map.Key), ToArrowType(*t.Map.Value))
	case schema.TypeIDStruct:
		fields := make([]arrow.Field, len(t.Struct.Fields))
		for i, field := range t.Struct.Fields {
			fields[i] = ToArrowField(field)
		}
		return arrow.StructOf(fields...)
	case schema.TypeIDUserDefined:
		// Opaque user types travel as their underlying sql type.
		return ToArrowType(t.UserDefined.Descriptor.SQLType())
	}
	panic("impossible, type switch bug")
}
