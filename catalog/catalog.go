package catalog

import (
	"fmt"
	"sync"
)

// IntrospectionLock serializes every call into a Catalog. The underlying
// type-introspection machinery is not safe for concurrent use, even when all
// callers only read, so a single process-wide lock is held for the whole
// depth of a recursive derivation. Value classification doesn't touch
// catalogs and needs no locking.
var IntrospectionLock sync.Mutex

// Descriptor is an opaque handle to one source type together with its
// resolved type-argument bindings. Descriptors are created per derivation
// call and discarded once derivation returns.
type Descriptor interface {
	descriptor()
}

// Shape is one of the structural or leaf tests a Catalog can answer for a
// Descriptor. The derivation engine tries shapes in a fixed order; the
// catalog only answers membership, never precedence.
type Shape int

const (
	// ShapeOptional is a single-type-argument wrapper marking absence.
	ShapeOptional Shape = iota
	// ShapeByteArray is an array of byte-sized elements, semantically a
	// binary blob rather than an element sequence.
	ShapeByteArray
	ShapeArray
	ShapeSequence
	ShapeMap
	// ShapeRecord is a named aggregate with an ordered, named field list.
	ShapeRecord

	ShapeString
	ShapeTimestamp
	ShapeDate
	// ShapeBigDecimal, ShapeDecimal and ShapeRational are the three
	// arbitrary-precision number representations recognized as decimals.
	ShapeBigDecimal
	ShapeDecimal
	ShapeRational

	ShapeBoxedBoolean
	ShapeBoxedByte
	ShapeBoxedShort
	ShapeBoxedInteger
	ShapeBoxedLong
	ShapeBoxedFloat
	ShapeBoxedDouble

	ShapePrimitiveBoolean
	ShapePrimitiveByte
	ShapePrimitiveShort
	ShapePrimitiveInteger
	ShapePrimitiveLong
	ShapePrimitiveFloat
	ShapePrimitiveDouble
)

// RecordField is one named, typed position of a record's field list, in
// declared order.
type RecordField struct {
	Name string
	Type Descriptor
}

// Catalog resolves types by name in the caller's current execution context
// and answers structural queries about them. Implementations re-resolve per
// call rather than caching, because the active context can change between
// calls. All methods must be called under IntrospectionLock.
type Catalog interface {
	// ResolveType finds a type by name in the current context.
	ResolveType(name string) (Descriptor, error)
	// Matches reports whether the type fits the given shape.
	Matches(d Descriptor, shape Shape) bool
	// TypeArguments returns the actual type arguments bound on the type,
	// in declaration order.
	TypeArguments(d Descriptor) []Descriptor
	// RecordFields returns the record's field list with the record's own
	// formal type parameters already substituted by the actual arguments
	// bound on d, so generic records resolve at every nesting depth.
	RecordFields(d Descriptor) ([]RecordField, error)
	// ErasedName returns the type's fully-qualified name with type
	// arguments dropped. This is the key shared with the user-type
	// registry.
	ErasedName(d Descriptor) string
}

// NoRecordFieldsError indicates a record type with no resolvable field
// list. It signals a malformed type description, not caller misuse.
type NoRecordFieldsError struct {
	Name string
}

func (e *NoRecordFieldsError) Error() string {
	return fmt.Sprintf("record type %s has no resolvable field list", e.Name)
}
