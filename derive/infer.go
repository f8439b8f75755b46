package derive

import (
	"math/big"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/shopspring/decimal"

	"github.com/tabledriver/typeschema/schema"
)

// Classifier maps a single runtime value to a type tag. It is deliberately
// partial: a false result means the value's shape is not one this
// classifier knows, not that classification failed.
type Classifier func(value interface{}) (schema.Type, bool)

// TypeOfValue is the built-in classifier. Callers needing coverage beyond
// the enumerated cases compose it with their own classifier via FirstOf
// rather than extending this one.
func TypeOfValue(value interface{}) (schema.Type, bool) {
	switch value.(type) {
	case bool:
		return schema.Boolean, true
	case []byte:
		return schema.Binary, true
	case string:
		return schema.String, true
	case int8:
		return schema.Byte, true
	case int16:
		return schema.Short, true
	case int32:
		return schema.Integer, true
	case int, int64:
		return schema.Long, true
	case float32:
		return schema.Float, true
	case float64:
		return schema.Double, true
	case schema.DateValue:
		return schema.Date, true
	case decimal.Decimal:
		return schema.DecimalDefault, true
	case apd.Decimal, *apd.Decimal:
		return schema.DecimalDefault, true
	case *big.Rat:
		return schema.DecimalDefault, true
	case time.Time:
		return schema.Timestamp, true
	case nil:
		return schema.Null, true
	}
	return schema.Type{}, false
}

// FirstOf composes classifiers left to right, first match wins.
func FirstOf(classifiers ...Classifier) Classifier {
	return func(value interface{}) (schema.Type, bool) {
		for _, classify := range classifiers {
			if t, ok := classify(value); ok {
				return t, true
			}
		}
		return schema.Type{}, false
	}
}
