package derive

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabledriver/typeschema/catalog"
	"github.com/tabledriver/typeschema/registry"
	"github.com/tabledriver/typeschema/schema"
)

func reflectDeriver(reg *registry.Registry) (*Deriver, *catalog.ReflectCatalog) {
	c := catalog.NewReflectCatalog()
	return NewDeriver(c, reg), c
}

func TestSchemaForPrimitives(t *testing.T) {
	d, c := reflectDeriver(nil)

	tests := []struct {
		value interface{}
		want  schema.Schema
	}{
		{value: true, want: schema.Schema{Type: schema.Boolean, Nullable: false}},
		{value: int8(1), want: schema.Schema{Type: schema.Byte, Nullable: false}},
		{value: int16(1), want: schema.Schema{Type: schema.Short, Nullable: false}},
		{value: int32(1), want: schema.Schema{Type: schema.Integer, Nullable: false}},
		{value: int(1), want: schema.Schema{Type: schema.Long, Nullable: false}},
		{value: int64(1), want: schema.Schema{Type: schema.Long, Nullable: false}},
		{value: float32(1), want: schema.Schema{Type: schema.Float, Nullable: false}},
		{value: float64(1), want: schema.Schema{Type: schema.Double, Nullable: false}},
		{value: sql.NullBool{}, want: schema.Schema{Type: schema.Boolean, Nullable: true}},
		{value: sql.NullByte{}, want: schema.Schema{Type: schema.Byte, Nullable: true}},
		{value: sql.NullInt16{}, want: schema.Schema{Type: schema.Short, Nullable: true}},
		{value: sql.NullInt32{}, want: schema.Schema{Type: schema.Integer, Nullable: true}},
		{value: sql.NullInt64{}, want: schema.Schema{Type: schema.Long, Nullable: true}},
		{value: sql.NullFloat64{}, want: schema.Schema{Type: schema.Double, Nullable: true}},
		{value: "text", want: schema.Schema{Type: schema.String, Nullable: true}},
		{value: sql.NullString{}, want: schema.Schema{Type: schema.String, Nullable: true}},
		{value: time.Time{}, want: schema.Schema{Type: schema.Timestamp, Nullable: true}},
		{value: sql.NullTime{}, want: schema.Schema{Type: schema.Timestamp, Nullable: true}},
		{value: schema.DateValue{}, want: schema.Schema{Type: schema.Date, Nullable: true}},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got, err := d.SchemaFor(c.DescriptorOf(tt.value))
			require.NoError(t, err)
			assert.True(t, got.Equals(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSchemaForOptionalCollapses(t *testing.T) {
	d, c := reflectDeriver(nil)

	var i int32
	pi := &i
	single, err := d.SchemaFor(c.DescriptorOf(pi))
	require.NoError(t, err)
	double, err := d.SchemaFor(c.DescriptorOf(&pi))
	require.NoError(t, err)

	want := schema.Schema{Type: schema.Integer, Nullable: true}
	assert.True(t, single.Equals(want), "got %s", single)
	assert.True(t, double.Equals(want), "nested optionals should collapse, got %s", double)
}

func TestSchemaForByteArrayBeatsGenericArray(t *testing.T) {
	d, c := reflectDeriver(nil)

	got, err := d.SchemaFor(c.DescriptorOf([]byte{}))
	require.NoError(t, err)
	assert.True(t, got.Equals(schema.Schema{Type: schema.Binary, Nullable: true}), "got %s", got)

	got, err = d.SchemaFor(c.DescriptorOf([4]byte{}))
	require.NoError(t, err)
	assert.True(t, got.Equals(schema.Schema{Type: schema.Binary, Nullable: true}), "got %s", got)
}

func TestSchemaForArray(t *testing.T) {
	d, c := reflectDeriver(nil)

	got, err := d.SchemaFor(c.DescriptorOf([]string{}))
	require.NoError(t, err)
	want := schema.Schema{Type: schema.ArrayOf(schema.String, true), Nullable: true}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)

	got, err = d.SchemaFor(c.DescriptorOf([]int64{}))
	require.NoError(t, err)
	want = schema.Schema{Type: schema.ArrayOf(schema.Long, false), Nullable: true}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)
}

func TestSchemaForMap(t *testing.T) {
	d, c := reflectDeriver(nil)

	got, err := d.SchemaFor(c.DescriptorOf(map[string]*int32{}))
	require.NoError(t, err)
	want := schema.Schema{Type: schema.MapOf(schema.String, schema.Integer, true), Nullable: true}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)

	// The key's own nullability is discarded.
	got, err = d.SchemaFor(c.DescriptorOf(map[*string]int64{}))
	require.NoError(t, err)
	want = schema.Schema{Type: schema.MapOf(schema.String, schema.Long, false), Nullable: true}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)
}

type address struct {
	Street string
	Number int32
}

type person struct {
	Name      string
	Age       int32
	Addresses []address
	Email     *string
}

func TestSchemaForRecord(t *testing.T) {
	d, c := reflectDeriver(nil)

	got, err := d.SchemaFor(c.DescriptorOf(address{}))
	require.NoError(t, err)
	want := schema.Schema{
		Type: schema.StructOf(
			schema.Field{Name: "Street", Type: schema.String, Nullable: true},
			schema.Field{Name: "Number", Type: schema.Integer, Nullable: false},
		),
		Nullable: true,
	}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)
}

func TestSchemaForRecordThroughContainer(t *testing.T) {
	d, c := reflectDeriver(nil)

	got, err := d.SchemaFor(c.DescriptorOf([]address{}))
	require.NoError(t, err)
	require.Equal(t, schema.TypeIDArray, got.Type.TypeID)
	assert.Equal(t, schema.TypeIDStruct, got.Type.Array.Element.TypeID)
	assert.True(t, got.Type.Array.ContainsNull)
}

func TestSchemaForGenericRecordSubstitution(t *testing.T) {
	c := catalog.NewNamedCatalog()
	c.DefineRecord("Pair", []string{"A", "B"},
		catalog.RecordField{Name: "first", Type: catalog.Named("A")},
		catalog.RecordField{Name: "second", Type: catalog.Named("B")},
	)
	d := NewDeriver(c, nil)

	got, err := d.SchemaFor(catalog.Named("Pair", catalog.Named("int"), catalog.Named("String")))
	require.NoError(t, err)
	want := schema.Schema{
		Type: schema.StructOf(
			schema.Field{Name: "first", Type: schema.Integer, Nullable: false},
			schema.Field{Name: "second", Type: schema.String, Nullable: true},
		),
		Nullable: true,
	}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)
}

func TestSchemaForGenericRecordNestedSubstitution(t *testing.T) {
	c := catalog.NewNamedCatalog()
	c.DefineRecord("Pair", []string{"A", "B"},
		catalog.RecordField{Name: "first", Type: catalog.Named("A")},
		catalog.RecordField{Name: "second", Type: catalog.Named("B")},
	)
	c.DefineRecord("Wrapper", []string{"T"},
		catalog.RecordField{Name: "items", Type: catalog.Named("Seq", catalog.Named("T"))},
	)
	d := NewDeriver(c, nil)

	// Wrapper<Pair<int, Optional<Integer>>>, substitution at every depth.
	got, err := d.SchemaFor(catalog.Named("Wrapper",
		catalog.Named("Pair", catalog.Named("int"), catalog.Named("Optional", catalog.Named("Integer"))),
	))
	require.NoError(t, err)
	want := schema.Schema{
		Type: schema.StructOf(
			schema.Field{
				Name: "items",
				Type: schema.ArrayOf(schema.StructOf(
					schema.Field{Name: "first", Type: schema.Integer, Nullable: false},
					schema.Field{Name: "second", Type: schema.Integer, Nullable: true},
				), true),
				Nullable: true,
			},
		),
		Nullable: true,
	}
	assert.True(t, got.Equals(want), "got %s, want %s", got, want)
}

type pointDescriptor struct{}

func (pointDescriptor) Name() string         { return "point" }
func (pointDescriptor) SQLType() schema.Type { return schema.ArrayOf(schema.Double, false) }

type point struct {
	X float64
	Y float64
}

func TestSchemaForUserDefinedBeatsRecord(t *testing.T) {
	reg := registry.New()
	d, c := reflectDeriver(reg)

	pointName := c.ErasedName(c.DescriptorOf(point{}))
	reg.Register(pointName, func() (schema.ExternalDescriptor, error) {
		return pointDescriptor{}, nil
	})

	got, err := d.SchemaFor(c.DescriptorOf(point{}))
	require.NoError(t, err)
	require.Equal(t, schema.TypeIDUserDefined, got.Type.TypeID)
	assert.True(t, got.Nullable)
	assert.Equal(t, "point", got.Type.UserDefined.Descriptor.Name())
}

func TestSchemaForUserTypeInstantiationFailure(t *testing.T) {
	reg := registry.New()
	d, c := reflectDeriver(reg)

	pointName := c.ErasedName(c.DescriptorOf(point{}))
	reg.Register(pointName, func() (schema.ExternalDescriptor, error) {
		return nil, errors.New("descriptor class unavailable")
	})

	_, err := d.SchemaFor(c.DescriptorOf(point{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptor class unavailable")
}

func TestSchemaForUnsupportedType(t *testing.T) {
	d, c := reflectDeriver(nil)

	_, err := d.SchemaFor(c.DescriptorOf(make(chan int)))
	require.Error(t, err)
	var unsupported *UnsupportedTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "chan int", unsupported.Name)
}

type hidden struct {
	value int
}

func TestSchemaForRecordWithoutUsableFields(t *testing.T) {
	d, c := reflectDeriver(nil)

	_, err := d.SchemaFor(c.DescriptorOf(hidden{value: 1}))
	require.Error(t, err)
	var noFields *catalog.NoRecordFieldsError
	assert.True(t, errors.As(err, &noFields))
}

func TestSchemaForNoFieldListDefinition(t *testing.T) {
	c := catalog.NewNamedCatalog()
	c.DefineRecord("Broken", nil)
	d := NewDeriver(c, nil)

	_, err := d.SchemaForName("Broken")
	require.Error(t, err)
	var noFields *catalog.NoRecordFieldsError
	assert.True(t, errors.As(err, &noFields))
}

func TestAttributesFor(t *testing.T) {
	d, c := reflectDeriver(nil)

	attributes, err := d.AttributesFor(c.DescriptorOf(person{}))
	require.NoError(t, err)
	require.Len(t, attributes, 4)
	assert.Equal(t, "Name", attributes[0].Name)
	assert.Equal(t, "Age", attributes[1].Name)
	assert.Equal(t, "Addresses", attributes[2].Name)
	assert.Equal(t, "Email", attributes[3].Name)
	assert.False(t, attributes[1].Nullable)
	assert.True(t, attributes[3].Nullable)

	_, err = d.AttributesFor(c.DescriptorOf(int64(0)))
	require.Error(t, err)
}

func TestSchemaForName(t *testing.T) {
	c := catalog.NewReflectCatalog()
	c.RegisterGoType(address{})
	d := NewDeriver(c, nil)

	name := c.ErasedName(c.DescriptorOf(address{}))
	got, err := d.SchemaForName(name)
	require.NoError(t, err)
	assert.Equal(t, schema.TypeIDStruct, got.Type.TypeID)

	_, err = d.SchemaForName("nonexistent.Type")
	require.Error(t, err)
}

func TestSchemaForCatalogResolvedPerCall(t *testing.T) {
	first := catalog.NewNamedCatalog()
	second := catalog.NewNamedCatalog()
	second.DefineRecord("Thing", nil,
		catalog.RecordField{Name: "id", Type: catalog.Named("long")},
	)

	active := first
	d := &Deriver{Catalog: func() (catalog.Catalog, error) {
		return active, nil
	}}

	_, err := d.SchemaForName("Thing")
	require.Error(t, err)

	active = second
	got, err := d.SchemaForName("Thing")
	require.NoError(t, err)
	assert.Equal(t, schema.TypeIDStruct, got.Type.TypeID)
}
