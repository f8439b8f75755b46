package derive

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tabledriver/typeschema/catalog"
	"github.com/tabledriver/typeschema/registry"
	"github.com/tabledriver/typeschema/schema"
)

// Deriver turns source types into schema trees.
//
// The Catalog provider is invoked again on every entry call, never cached,
// so callers juggling multiple isolated execution contexts always derive
// against the currently active one. All catalog work happens under
// catalog.IntrospectionLock, held for the full depth of one derivation.
type Deriver struct {
	Catalog  func() (catalog.Catalog, error)
	Registry *registry.Registry
}

func NewDeriver(c catalog.Catalog, r *registry.Registry) *Deriver {
	return &Deriver{
		Catalog: func() (catalog.Catalog, error) {
			return c, nil
		},
		Registry: r,
	}
}

// UnsupportedTypeError indicates that no derivation rule matched the type.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Name)
}

// SchemaFor derives the schema tree for a type.
//
// Type nesting is assumed acyclic; a record holding a field of its own type
// without an intervening container recurses without bound.
func (d *Deriver) SchemaFor(t catalog.Descriptor) (schema.Schema, error) {
	catalog.IntrospectionLock.Lock()
	defer catalog.IntrospectionLock.Unlock()
	c, err := d.Catalog()
	if err != nil {
		return schema.Schema{}, errors.Wrap(err, "couldn't resolve type catalog")
	}
	return schemaFor(c, d.Registry, t)
}

// SchemaForName resolves a type by name in the current execution context
// and derives its schema.
func (d *Deriver) SchemaForName(name string) (schema.Schema, error) {
	catalog.IntrospectionLock.Lock()
	defer catalog.IntrospectionLock.Unlock()
	c, err := d.Catalog()
	if err != nil {
		return schema.Schema{}, errors.Wrap(err, "couldn't resolve type catalog")
	}
	t, err := c.ResolveType(name)
	if err != nil {
		return schema.Schema{}, errors.Wrapf(err, "couldn't resolve type %s", name)
	}
	return schemaFor(c, d.Registry, t)
}

// AttributesFor derives the schema for a type and returns its field list.
// The type has to derive to a struct; asking for the attributes of anything
// else is a caller error.
func (d *Deriver) AttributesFor(t catalog.Descriptor) ([]schema.Field, error) {
	derived, err := d.SchemaFor(t)
	if err != nil {
		return nil, err
	}
	if derived.Type.TypeID != schema.TypeIDStruct {
		return nil, errors.Errorf("attributes can only be derived for struct types, got %s", derived.Type)
	}
	return derived.Type.Struct.Fields, nil
}

// A rule classifies a type, reporting whether it applied. Rules never see a
// type an earlier rule matched.
type rule func(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error)

// rules is tried top to bottom, first match wins. The order is load-bearing:
// the user-type lookup precedes every structural test, byte arrays must be
// recognized before the generic array rule sees them, and the structural
// rules must all precede the leaf rules so a composite type can't be
// misclassified by its erased name.
var rules []rule

func init() {
	rules = []rule{
		userDefinedRule,
		optionalRule,
		byteArrayRule,
		arrayRule,
		mapRule,
		recordRule,
		wellKnownRule,
		boxedRule,
		primitiveRule,
	}
}

func schemaFor(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, error) {
	for _, r := range rules {
		derived, ok, err := r(c, reg, t)
		if err != nil {
			return schema.Schema{}, err
		}
		if ok {
			return derived, nil
		}
	}
	return schema.Schema{}, &UnsupportedTypeError{Name: c.ErasedName(t)}
}

func userDefinedRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if reg == nil {
		return schema.Schema{}, false, nil
	}
	descriptor, registered, err := reg.Instantiate(c.ErasedName(t))
	if err != nil {
		return schema.Schema{}, false, err
	}
	if !registered {
		return schema.Schema{}, false, nil
	}
	return schema.Schema{Type: schema.UserDefinedOf(descriptor), Nullable: true}, true, nil
}

func optionalRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if !c.Matches(t, catalog.ShapeOptional) {
		return schema.Schema{}, false, nil
	}
	args := c.TypeArguments(t)
	if len(args) != 1 {
		return schema.Schema{}, false, errors.Errorf("optional type %s has no wrapped type argument", c.ErasedName(t))
	}
	inner, err := schemaFor(c, reg, args[0])
	if err != nil {
		return schema.Schema{}, false, err
	}
	// Only the inner data type survives; its own nullability is dropped, so
	// nested optionals collapse to one nullable level.
	return schema.Schema{Type: inner.Type, Nullable: true}, true, nil
}

func byteArrayRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if !c.Matches(t, catalog.ShapeByteArray) {
		return schema.Schema{}, false, nil
	}
	return schema.Schema{Type: schema.Binary, Nullable: true}, true, nil
}

func arrayRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if !c.Matches(t, catalog.ShapeArray) && !c.Matches(t, catalog.ShapeSequence) {
		return schema.Schema{}, false, nil
	}
	args := c.TypeArguments(t)
	if len(args) != 1 {
		return schema.Schema{}, false, errors.Errorf("array type %s has no element type argument", c.ErasedName(t))
	}
	element, err := schemaFor(c, reg, args[0])
	if err != nil {
		return schema.Schema{}, false, err
	}
	return schema.Schema{
		Type:     schema.ArrayOf(element.Type, element.Nullable),
		Nullable: true,
	}, true, nil
}

func mapRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if !c.Matches(t, catalog.ShapeMap) {
		return schema.Schema{}, false, nil
	}
	args := c.TypeArguments(t)
	if len(args) != 2 {
		return schema.Schema{}, false, errors.Errorf("map type %s doesn't have key and value type arguments", c.ErasedName(t))
	}
	key, err := schemaFor(c, reg, args[0])
	if err != nil {
		return schema.Schema{}, false, err
	}
	value, err := schemaFor(c, reg, args[1])
	if err != nil {
		return schema.Schema{}, false, err
	}
	// Map keys can't be absent, so the key's own nullability is dropped.
	return schema.Schema{
		Type:     schema.MapOf(key.Type, value.Type, value.Nullable),
		Nullable: true,
	}, true, nil
}

func recordRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	if !c.Matches(t, catalog.ShapeRecord) {
		return schema.Schema{}, false, nil
	}
	recordFields, err := c.RecordFields(t)
	if err != nil {
		return schema.Schema{}, false, errors.Wrapf(err, "couldn't resolve field list of record type %s", c.ErasedName(t))
	}
	fields := make([]schema.Field, len(recordFields))
	for i, field := range recordFields {
		fieldSchema, err := schemaFor(c, reg, field.Type)
		if err != nil {
			return schema.Schema{}, false, errors.Wrapf(err, "couldn't derive schema for field %s of %s", field.Name, c.ErasedName(t))
		}
		fields[i] = schema.Field{
			Name:     field.Name,
			Type:     fieldSchema.Type,
			Nullable: fieldSchema.Nullable,
		}
	}
	return schema.Schema{Type: schema.StructOf(fields...), Nullable: true}, true, nil
}

var wellKnownTypes = []struct {
	shape catalog.Shape
	t     schema.Type
}{
	{catalog.ShapeString, schema.String},
	{catalog.ShapeTimestamp, schema.Timestamp},
	{catalog.ShapeDate, schema.Date},
	{catalog.ShapeBigDecimal, schema.DecimalDefault},
	{catalog.ShapeDecimal, schema.DecimalDefault},
	{catalog.ShapeRational, schema.DecimalDefault},
}

func wellKnownRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	for _, wellKnown := range wellKnownTypes {
		if c.Matches(t, wellKnown.shape) {
			return schema.Schema{Type: wellKnown.t, Nullable: true}, true, nil
		}
	}
	return schema.Schema{}, false, nil
}

var boxedTypes = []struct {
	shape catalog.Shape
	t     schema.Type
}{
	{catalog.ShapeBoxedBoolean, schema.Boolean},
	{catalog.ShapeBoxedByte, schema.Byte},
	{catalog.ShapeBoxedShort, schema.Short},
	{catalog.ShapeBoxedInteger, schema.Integer},
	{catalog.ShapeBoxedLong, schema.Long},
	{catalog.ShapeBoxedFloat, schema.Float},
	{catalog.ShapeBoxedDouble, schema.Double},
}

func boxedRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	for _, boxed := range boxedTypes {
		if c.Matches(t, boxed.shape) {
			return schema.Schema{Type: boxed.t, Nullable: true}, true, nil
		}
	}
	return schema.Schema{}, false, nil
}

var primitiveTypes = []struct {
	shape catalog.Shape
	t     schema.Type
}{
	{catalog.ShapePrimitiveBoolean, schema.Boolean},
	{catalog.ShapePrimitiveByte, schema.Byte},
	{catalog.ShapePrimitiveShort, schema.Short},
	{catalog.ShapePrimitiveInteger, schema.Integer},
	{catalog.ShapePrimitiveLong, schema.Long},
	{catalog.ShapePrimitiveFloat, schema.Float},
	{catalog.ShapePrimitiveDouble, schema.Double},
}

// primitiveRule is the only source of nullable = false in the whole rule
// list.
func primitiveRule(c catalog.Catalog, reg *registry.Registry, t catalog.Descriptor) (schema.Schema, bool, error) {
	for _, primitive := range primitiveTypes {
		if c.Matches(t, primitive.shape) {
			return schema.Schema{Type: primitive.t, Nullable: false}, true, nil
		}
	}
	return schema.Schema{}, false, nil
}
