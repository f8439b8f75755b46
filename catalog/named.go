package catalog

import (
	"github.com/pkg/errors"
)

// NamedCatalog is a declarative catalog: types are defined by name, record
// definitions may carry formal type parameters, and applied types bind
// actual arguments. One NamedCatalog is one execution context; callers that
// juggle several isolated contexts hand the engine a provider choosing the
// active one, and definitions are looked up again on every call.
type NamedCatalog struct {
	definitions map[string]*recordDefinition
}

type recordDefinition struct {
	typeParams []string
	fields     []RecordField
}

func NewNamedCatalog() *NamedCatalog {
	return &NamedCatalog{
		definitions: make(map[string]*recordDefinition),
	}
}

// NamedDescriptor is a type reference: a name applied to actual type
// arguments. Inside record definitions the name may also be one of the
// record's formal type parameters.
type NamedDescriptor struct {
	Name string
	Args []NamedDescriptor
}

func (NamedDescriptor) descriptor() {}

// Named builds a descriptor for the type called name applied to the given
// actual type arguments.
func Named(name string, args ...NamedDescriptor) NamedDescriptor {
	return NamedDescriptor{Name: name, Args: args}
}

// Builtin scalar names. Lowercase names are the unboxed primitives,
// capitalized ones their boxed wrappers.
var builtinShapes = map[string]Shape{
	"boolean":    ShapePrimitiveBoolean,
	"byte":       ShapePrimitiveByte,
	"short":      ShapePrimitiveShort,
	"int":        ShapePrimitiveInteger,
	"long":       ShapePrimitiveLong,
	"float":      ShapePrimitiveFloat,
	"double":     ShapePrimitiveDouble,
	"Boolean":    ShapeBoxedBoolean,
	"Byte":       ShapeBoxedByte,
	"Short":      ShapeBoxedShort,
	"Integer":    ShapeBoxedInteger,
	"Long":       ShapeBoxedLong,
	"Float":      ShapeBoxedFloat,
	"Double":     ShapeBoxedDouble,
	"String":     ShapeString,
	"Timestamp":  ShapeTimestamp,
	"Date":       ShapeDate,
	"BigDecimal": ShapeBigDecimal,
	"Decimal":    ShapeDecimal,
	"Rational":   ShapeRational,
}

var wrapperArity = map[string]int{
	"Optional": 1,
	"Array":    1,
	"Seq":      1,
	"Map":      2,
}

// DefineRecord registers a record definition. Field types referencing one
// of typeParams get substituted with the actual arguments of the applied
// type when the field list is resolved. A definition with no fields models
// a malformed type description and fails resolution.
func (c *NamedCatalog) DefineRecord(name string, typeParams []string, fields ...RecordField) {
	c.definitions[name] = &recordDefinition{
		typeParams: typeParams,
		fields:     fields,
	}
}

func (c *NamedCatalog) ResolveType(name string) (Descriptor, error) {
	if _, ok := builtinShapes[name]; ok {
		return Named(name), nil
	}
	if _, ok := wrapperArity[name]; ok {
		return Named(name), nil
	}
	if _, ok := c.definitions[name]; ok {
		return Named(name), nil
	}
	return nil, errors.Errorf("type %s is not defined in the current scope", name)
}

func (c *NamedCatalog) Matches(d Descriptor, shape Shape) bool {
	named := d.(NamedDescriptor)
	switch shape {
	case ShapeOptional:
		return named.Name == "Optional"
	case ShapeByteArray:
		return named.Name == "Array" && len(named.Args) == 1 && named.Args[0].Name == "byte"
	case ShapeArray:
		return named.Name == "Array"
	case ShapeSequence:
		return named.Name == "Seq"
	case ShapeMap:
		return named.Name == "Map"
	case ShapeRecord:
		_, ok := c.definitions[named.Name]
		return ok
	default:
		return builtinShapes[named.Name] == shape && shapeDefined(named.Name)
	}
}

// builtinShapes lookups return the zero Shape for unknown names, which
// collides with ShapeOptional; membership needs its own check.
func shapeDefined(name string) bool {
	_, ok := builtinShapes[name]
	return ok
}

func (c *NamedCatalog) TypeArguments(d Descriptor) []Descriptor {
	named := d.(NamedDescriptor)
	args := make([]Descriptor, len(named.Args))
	for i := range named.Args {
		args[i] = named.Args[i]
	}
	return args
}

func (c *NamedCatalog) RecordFields(d Descriptor) ([]RecordField, error) {
	named := d.(NamedDescriptor)
	def, ok := c.definitions[named.Name]
	if !ok {
		return nil, errors.Errorf("type %s is not a record in the current scope", named.Name)
	}
	if len(def.fields) == 0 {
		return nil, &NoRecordFieldsError{Name: named.Name}
	}
	if len(def.typeParams) != len(named.Args) {
		return nil, errors.Errorf(
			"record type %s expects %d type arguments, got %d",
			named.Name, len(def.typeParams), len(named.Args),
		)
	}
	bindings := make(map[string]NamedDescriptor, len(def.typeParams))
	for i, param := range def.typeParams {
		bindings[param] = named.Args[i]
	}
	fields := make([]RecordField, len(def.fields))
	for i, field := range def.fields {
		fields[i] = RecordField{
			Name: field.Name,
			Type: substitute(field.Type.(NamedDescriptor), bindings),
		}
	}
	return fields, nil
}

func substitute(t NamedDescriptor, bindings map[string]NamedDescriptor) NamedDescriptor {
	if bound, ok := bindings[t.Name]; ok && len(t.Args) == 0 {
		return bound
	}
	if len(t.Args) == 0 {
		return t
	}
	args := make([]NamedDescriptor, len(t.Args))
	for i := range t.Args {
		args[i] = substitute(t.Args[i], bindings)
	}
	return NamedDescriptor{Name: t.Name, Args: args}
}

func (c *NamedCatalog) ErasedName(d Descriptor) string {
	return d.(NamedDescriptor).Name
}
