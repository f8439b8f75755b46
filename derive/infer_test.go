package derive

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/shopspring/decimal"

	"github.com/tabledriver/typeschema/schema"
)

func TestTypeOfValue(t *testing.T) {
	tests := []struct {
		value interface{}
		want  schema.Type
	}{
		{value: nil, want: schema.Null},
		{value: true, want: schema.Boolean},
		{value: []byte("blob"), want: schema.Binary},
		{value: "x", want: schema.String},
		{value: int8(1), want: schema.Byte},
		{value: int16(1), want: schema.Short},
		{value: int32(1), want: schema.Integer},
		{value: int(1), want: schema.Long},
		{value: int64(1), want: schema.Long},
		{value: float32(1), want: schema.Float},
		{value: float64(1), want: schema.Double},
		{value: schema.DateValue{Year: 2021, Month: time.April, Day: 5}, want: schema.Date},
		{value: decimal.New(42, -1), want: schema.DecimalDefault},
		{value: apd.New(42, -1), want: schema.DecimalDefault},
		{value: big.NewRat(1, 3), want: schema.DecimalDefault},
		{value: time.Now(), want: schema.Timestamp},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got, ok := TypeOfValue(tt.value)
			if !ok {
				t.Fatalf("TypeOfValue(%v) didn't match", tt.value)
			}
			if !got.Equals(tt.want) {
				t.Errorf("TypeOfValue(%v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

type rawBlob struct {
	bytes []byte
}

func TestTypeOfValueIsPartial(t *testing.T) {
	if _, ok := TypeOfValue(rawBlob{bytes: []byte{1}}); ok {
		t.Fatal("unrecognized value shouldn't match the built-in classifier")
	}
}

func TestFirstOfComposition(t *testing.T) {
	blobClassifier := func(value interface{}) (schema.Type, bool) {
		if _, ok := value.(rawBlob); ok {
			return schema.Binary, true
		}
		return schema.Type{}, false
	}

	classify := FirstOf(TypeOfValue, blobClassifier)

	got, ok := classify(rawBlob{})
	if !ok {
		t.Fatal("fallback classifier should've matched")
	}
	if !got.Equals(schema.Binary) {
		t.Errorf("got %s, want Binary", got)
	}

	// Earlier classifiers win.
	got, ok = classify("x")
	if !ok || !got.Equals(schema.String) {
		t.Errorf("got %s, want String", got)
	}

	if _, ok := classify(make(chan int)); ok {
		t.Error("composed classifier should still be partial")
	}
}
