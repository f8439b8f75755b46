package catalog

import (
	"database/sql"
	"math/big"
	"reflect"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tabledriver/typeschema/schema"
)

// ReflectCatalog answers structural queries using the Go runtime's
// reflection machinery. Pointer types play the optional wrapper, sql.Null*
// wrappers play the boxed scalars, and plain kinds play the unboxed
// primitives. Go types are already fully instantiated at runtime, so
// type-argument substitution comes for free here.
type ReflectCatalog struct {
	named map[string]reflect.Type
}

func NewReflectCatalog() *ReflectCatalog {
	return &ReflectCatalog{
		named: make(map[string]reflect.Type),
	}
}

// RegisterGoType makes the dynamic type of v resolvable by its erased name.
// Must be called under IntrospectionLock, like every other catalog entry
// point.
func (c *ReflectCatalog) RegisterGoType(v interface{}) {
	t := reflect.TypeOf(v)
	c.named[erasedNameOf(t)] = t
}

func (c *ReflectCatalog) DescriptorOf(v interface{}) Descriptor {
	return reflectDescriptor{t: reflect.TypeOf(v)}
}

func (c *ReflectCatalog) DescriptorOfType(t reflect.Type) Descriptor {
	return reflectDescriptor{t: t}
}

type reflectDescriptor struct {
	t reflect.Type
}

func (reflectDescriptor) descriptor() {}

var (
	timeType       = reflect.TypeOf(time.Time{})
	dateType       = reflect.TypeOf(schema.DateValue{})
	apdDecimalType = reflect.TypeOf(apd.Decimal{})
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	ratType        = reflect.TypeOf(big.Rat{})
	nullBoolType   = reflect.TypeOf(sql.NullBool{})
	nullByteType   = reflect.TypeOf(sql.NullByte{})
	nullInt16Type  = reflect.TypeOf(sql.NullInt16{})
	nullInt32Type  = reflect.TypeOf(sql.NullInt32{})
	nullInt64Type  = reflect.TypeOf(sql.NullInt64{})
	nullFloatType  = reflect.TypeOf(sql.NullFloat64{})
	nullStringType = reflect.TypeOf(sql.NullString{})
	nullTimeType   = reflect.TypeOf(sql.NullTime{})
)

func isWellKnownStruct(t reflect.Type) bool {
	switch t {
	case timeType, dateType, apdDecimalType, decimalType, ratType,
		nullBoolType, nullByteType, nullInt16Type, nullInt32Type,
		nullInt64Type, nullFloatType, nullStringType, nullTimeType:
		return true
	}
	return false
}

func (c *ReflectCatalog) ResolveType(name string) (Descriptor, error) {
	t, ok := c.named[name]
	if !ok {
		return nil, errors.Errorf("type %s is not registered in the current context", name)
	}
	return reflectDescriptor{t: t}, nil
}

func (c *ReflectCatalog) Matches(d Descriptor, shape Shape) bool {
	t := d.(reflectDescriptor).t
	switch shape {
	case ShapeOptional:
		return t.Kind() == reflect.Ptr
	case ShapeByteArray:
		return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) &&
			t.Elem().Kind() == reflect.Uint8
	case ShapeArray:
		return t.Kind() == reflect.Array
	case ShapeSequence:
		return t.Kind() == reflect.Slice
	case ShapeMap:
		return t.Kind() == reflect.Map
	case ShapeRecord:
		return t.Kind() == reflect.Struct && !isWellKnownStruct(t)
	case ShapeString:
		return t.Kind() == reflect.String || t == nullStringType
	case ShapeTimestamp:
		return t == timeType || t == nullTimeType
	case ShapeDate:
		return t == dateType
	case ShapeBigDecimal:
		return t == apdDecimalType
	case ShapeDecimal:
		return t == decimalType
	case ShapeRational:
		return t == ratType
	case ShapeBoxedBoolean:
		return t == nullBoolType
	case ShapeBoxedByte:
		return t == nullByteType
	case ShapeBoxedShort:
		return t == nullInt16Type
	case ShapeBoxedInteger:
		return t == nullInt32Type
	case ShapeBoxedLong:
		return t == nullInt64Type
	case ShapeBoxedFloat:
		// There is no 32-bit float wrapper in database/sql.
		return false
	case ShapeBoxedDouble:
		return t == nullFloatType
	case ShapePrimitiveBoolean:
		return t.Kind() == reflect.Bool
	case ShapePrimitiveByte:
		return t.Kind() == reflect.Int8 || t.Kind() == reflect.Uint8
	case ShapePrimitiveShort:
		return t.Kind() == reflect.Int16
	case ShapePrimitiveInteger:
		return t.Kind() == reflect.Int32
	case ShapePrimitiveLong:
		return t.Kind() == reflect.Int || t.Kind() == reflect.Int64
	case ShapePrimitiveFloat:
		return t.Kind() == reflect.Float32
	case ShapePrimitiveDouble:
		return t.Kind() == reflect.Float64
	}
	return false
}

func (c *ReflectCatalog) TypeArguments(d Descriptor) []Descriptor {
	t := d.(reflectDescriptor).t
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return []Descriptor{reflectDescriptor{t: t.Elem()}}
	case reflect.Map:
		return []Descriptor{
			reflectDescriptor{t: t.Key()},
			reflectDescriptor{t: t.Elem()},
		}
	}
	return nil
}

func (c *ReflectCatalog) RecordFields(d Descriptor) ([]RecordField, error) {
	t := d.(reflectDescriptor).t
	fieldCount := t.NumField()
	fields := make([]RecordField, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			// Unexported fields are invisible to the engine.
			continue
		}
		fields = append(fields, RecordField{
			Name: field.Name,
			Type: reflectDescriptor{t: field.Type},
		})
	}
	if len(fields) == 0 {
		return nil, &NoRecordFieldsError{Name: erasedNameOf(t)}
	}
	return fields, nil
}

func (c *ReflectCatalog) ErasedName(d Descriptor) string {
	return erasedNameOf(d.(reflectDescriptor).t)
}

func erasedNameOf(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
