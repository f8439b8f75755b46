package jsonschema

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/tabledriver/typeschema/schema"
)

// sampleSize is how many leading documents contribute to the inferred
// schema.
const sampleSize = 100

// InferFile infers a field list from a file of newline-delimited JSON
// objects.
func InferFile(path string) ([]schema.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()
	return Infer(f)
}

// Infer reads up to sampleSize newline-delimited JSON objects and merges
// their value shapes into one field list, sorted by name. A field missing
// from some documents, or carrying null in some, comes out nullable.
func Infer(r io.Reader) ([]schema.Field, error) {
	sc := bufio.NewScanner(bufio.NewReaderSize(r, 4096*1024))
	sc.Buffer(nil, 1024*1024)

	fields := make(map[string]schema.Schema)
	seen := make(map[string]int)

	var p fastjson.Parser
	lines := 0
	for sc.Scan() && lines < sampleSize {
		lines++
		v, err := p.ParseBytes(sc.Bytes())
		if err != nil {
			return nil, errors.Wrap(err, "couldn't parse json")
		}
		if v.Type() != fastjson.TypeObject {
			return nil, errors.Errorf("expected JSON object, got '%s'", sc.Text())
		}
		o, err := v.Object()
		if err != nil {
			return nil, errors.Errorf("expected JSON object, got '%s'", sc.Text())
		}

		o.Visit(func(key []byte, value *fastjson.Value) {
			valueSchema := TypeOf(value)
			if current, ok := fields[string(key)]; ok {
				fields[string(key)] = merge(current, valueSchema)
			} else {
				fields[string(key)] = valueSchema
			}
			seen[string(key)]++
		})
	}
	if sc.Err() != nil {
		return nil, errors.Wrap(sc.Err(), "couldn't scan lines")
	}

	out := make([]schema.Field, 0, len(fields))
	for name, fieldSchema := range fields {
		nullable := fieldSchema.Nullable || seen[name] < lines
		out = append(out, schema.Field{
			Name:     name,
			Type:     fieldSchema.Type,
			Nullable: nullable,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

// TypeOf classifies one JSON value. Strings holding RFC3339 timestamps are
// reported as timestamps.
func TypeOf(value *fastjson.Value) schema.Schema {
	switch value.Type() {
	case fastjson.TypeNull:
		return schema.Schema{Type: schema.Null, Nullable: true}
	case fastjson.TypeString:
		v, _ := value.StringBytes()
		if _, err := time.Parse(time.RFC3339Nano, string(v)); err == nil {
			return schema.Schema{Type: schema.Timestamp, Nullable: false}
		}
		return schema.Schema{Type: schema.String, Nullable: false}
	case fastjson.TypeNumber:
		return schema.Schema{Type: schema.Double, Nullable: false}
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return schema.Schema{Type: schema.Boolean, Nullable: false}
	case fastjson.TypeObject:
		obj, _ := value.Object()
		fields := make([]schema.Field, 0, obj.Len())
		obj.Visit(func(key []byte, v *fastjson.Value) {
			fieldSchema := TypeOf(v)
			fields = append(fields, schema.Field{
				Name:     string(key),
				Type:     fieldSchema.Type,
				Nullable: fieldSchema.Nullable,
			})
		})
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Name < fields[j].Name
		})
		return schema.Schema{Type: schema.StructOf(fields...), Nullable: false}
	case fastjson.TypeArray:
		arr, _ := value.Array()
		element := schema.Schema{Type: schema.Null, Nullable: false}
		for i := range arr {
			if i == 0 {
				element = TypeOf(arr[i])
			} else {
				element = merge(element, TypeOf(arr[i]))
			}
		}
		return schema.Schema{
			Type:     schema.ArrayOf(element.Type, element.Nullable),
			Nullable: false,
		}
	}

	panic(fmt.Sprintf("unexhaustive json input value match: %s %+v", value.Type().String(), value))
}

// merge widens two observed schemas into one covering both. Null only adds
// nullability; conflicting scalars widen to String.
func merge(a, b schema.Schema) schema.Schema {
	if a.Type.TypeID == schema.TypeIDNull {
		return schema.Schema{Type: b.Type, Nullable: true}
	}
	if b.Type.TypeID == schema.TypeIDNull {
		return schema.Schema{Type: a.Type, Nullable: true}
	}
	nullable := a.Nullable || b.Nullable
	if a.Type.Equals(b.Type) {
		return schema.Schema{Type: a.Type, Nullable: nullable}
	}
	if a.Type.TypeID == schema.TypeIDArray && b.Type.TypeID == schema.TypeIDArray {
		element := merge(
			schema.Schema{Type: *a.Type.Array.Element, Nullable: a.Type.Array.ContainsNull},
			schema.Schema{Type: *b.Type.Array.Element, Nullable: b.Type.Array.ContainsNull},
		)
		return schema.Schema{
			Type:     schema.ArrayOf(element.Type, element.Nullable),
			Nullable: nullable,
		}
	}
	if a.Type.TypeID == schema.TypeIDStruct && b.Type.TypeID == schema.TypeIDStruct {
		return schema.Schema{Type: mergeStructs(a.Type, b.Type), Nullable: nullable}
	}
	return schema.Schema{Type: schema.String, Nullable: nullable}
}

func mergeStructs(a, b schema.Type) schema.Type {
	byName := make(map[string]schema.Field)
	for _, field := range a.Struct.Fields {
		byName[field.Name] = field
	}
	var out []schema.Field
	for _, field := range b.Struct.Fields {
		if existing, ok := byName[field.Name]; ok {
			merged := merge(
				schema.Schema{Type: existing.Type, Nullable: existing.Nullable},
				schema.Schema{Type: field.Type, Nullable: field.Nullable},
			)
			out = append(out, schema.Field{Name: field.Name, Type: merged.Type, Nullable: merged.Nullable})
			delete(byName, field.Name)
		} else {
			// Present on one side only.
			out = append(out, schema.Field{Name: field.Name, Type: field.Type, Nullable: true})
		}
	}
	for _, field := range a.Struct.Fields {
		if remaining, ok := byName[field.Name]; ok {
			out = append(out, schema.Field{Name: remaining.Name, Type: remaining.Type, Nullable: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return schema.StructOf(out...)
}
