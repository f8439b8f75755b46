package parquetschema

import (
	"os"

	"github.com/pkg/errors"
	"github.com/segmentio/parquet-go"

	"github.com/tabledriver/typeschema/schema"
)

// Read maps a parquet file's schema to a field list. Columns with no
// counterpart in the type vocabulary are dropped.
func Read(path string) ([]schema.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't stat file")
	}

	file, err := parquet.OpenFile(f, stat.Size(), &parquet.FileConfig{
		SkipPageIndex:    true,
		SkipBloomFilters: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open parquet file")
	}

	fileFields := file.Schema().Fields()
	fields := make([]schema.Field, 0, len(fileFields))
	for _, field := range fileFields {
		fieldSchema, ok := nodeSchema(field)
		if !ok {
			continue
		}
		fields = append(fields, schema.Field{
			Name:     field.Name(),
			Type:     fieldSchema.Type,
			Nullable: fieldSchema.Nullable,
		})
	}

	return fields, nil
}

func nodeSchema(node parquet.Node) (schema.Schema, bool) {
	var out schema.Type
	if node.Leaf() {
		leaf, ok := leafType(node)
		if !ok {
			return schema.Schema{}, false
		}
		out = leaf
	} else {
		switch {
		case isList(node):
			element, ok := nodeSchema(listElementOf(node))
			if !ok {
				return schema.Schema{}, false
			}
			out = schema.ArrayOf(element.Type, element.Nullable)
		case isMap(node):
			key, keyOk := nodeSchema(mapChildOf(node, "key"))
			value, valueOk := nodeSchema(mapChildOf(node, "value"))
			if !keyOk || !valueOk {
				return schema.Schema{}, false
			}
			out = schema.MapOf(key.Type, value.Type, value.Nullable)
		default:
			var fields []schema.Field
			for _, child := range node.Fields() {
				childSchema, ok := nodeSchema(child)
				if !ok {
					continue
				}
				fields = append(fields, schema.Field{
					Name:     child.Name(),
					Type:     childSchema.Type,
					Nullable: childSchema.Nullable,
				})
			}
			out = schema.StructOf(fields...)
		}
	}

	if node.Repeated() {
		return schema.Schema{Type: schema.ArrayOf(out, false), Nullable: false}, true
	}
	return schema.Schema{Type: out, Nullable: node.Optional()}, true
}

func leafType(node parquet.Node) (schema.Type, bool) {
	logicalType := node.Type().LogicalType()
	if logicalType != nil {
		switch {
		case logicalType.UTF8 != nil:
			return schema.String, true
		case logicalType.Date != nil:
			return schema.Date, true
		case logicalType.Timestamp != nil:
			return schema.Timestamp, true
		case logicalType.Decimal != nil:
			return schema.DecimalOf(
				int(logicalType.Decimal.Precision),
				int(logicalType.Decimal.Scale),
			), true
		}
	}

	switch node.Type().Kind() {
	case parquet.Boolean:
		return schema.Boolean, true
	case parquet.Int32:
		return schema.Integer, true
	case parquet.Int64:
		return schema.Long, true
	case parquet.Float:
		return schema.Float, true
	case parquet.Double:
		return schema.Double, true
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return schema.Binary, true
	}
	// Int96 and anything newer.
	return schema.Type{}, false
}

func isList(node parquet.Node) bool {
	logicalType := node.Type().LogicalType()
	return logicalType != nil && logicalType.List != nil
}

func isMap(node parquet.Node) bool {
	logicalType := node.Type().LogicalType()
	return logicalType != nil && logicalType.Map != nil
}

func listElementOf(node parquet.Node) parquet.Node {
	if list := childByName(node, "list"); list != nil {
		if element := childByName(list, "element"); element != nil {
			return element
		}
	}
	panic("node with logical type LIST is not composed of a repeated .list.element")
}

func mapChildOf(node parquet.Node, name string) parquet.Node {
	if keyValue := childByName(node, "key_value"); keyValue != nil {
		if child := childByName(keyValue, name); child != nil {
			return child
		}
	}
	panic("node with logical type MAP is not composed of a repeated .key_value group")
}

func childByName(node parquet.Node, name string) parquet.Node {
	for _, field := range node.Fields() {
		if field.Name() == name {
			return field
		}
	}
	return nil
}
