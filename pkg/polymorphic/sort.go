package polymorphic

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-polyfields/pkg/model"
)

// sortRecords returns a copy of records ordered by field. Records without a
// value come last; ties are broken by ascending id with unsaved records last.
// The order of full ties is preserved.
func sortRecords(records []model.Record, field string) []model.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b model.Record) int {
		if c := compareKeys(sortValue(a, field), sortValue(b, field)); c != 0 {
			return c
		}
		return compareIDs(a, b)
	})
	return out
}

func sortValue(rec model.Record, field string) any {
	if model.IsNil(rec) {
		return nil
	}
	value, ok := rec.Attribute(field)
	if !ok || model.IsNil(value) {
		return nil
	}
	return value
}

func compareIDs(a, b model.Record) int {
	idA, okA := recordID(a)
	idB, okB := recordID(b)
	switch {
	case okA && okB:
		return cmp.Compare(idA, idB)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

func recordID(rec model.Record) (int64, bool) {
	if model.IsNil(rec) {
		return 0, false
	}
	return rec.ID()
}

// compareKeys orders nil after every value. Numbers, strings, times and
// booleans compare natively; mixed kinds fall back to their printed form.
func compareKeys(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if c, ok := compareNumbers(a, b); ok {
		return c
	}
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

type numberKind uint8

const (
	notNumber numberKind = iota
	signedNumber
	unsignedNumber
	floatNumber
)

func numberKindOf(rv reflect.Value) numberKind {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedNumber
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedNumber
	case reflect.Float32, reflect.Float64:
		return floatNumber
	default:
		return notNumber
	}
}

// compareNumbers compares integers exactly and only goes through float64
// when one side is a float.
func compareNumbers(a, b any) (int, bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := numberKindOf(ra), numberKindOf(rb)
	if ka == notNumber || kb == notNumber {
		return 0, false
	}
	switch {
	case ka == signedNumber && kb == signedNumber:
		return cmp.Compare(ra.Int(), rb.Int()), true
	case ka == unsignedNumber && kb == unsignedNumber:
		return cmp.Compare(ra.Uint(), rb.Uint()), true
	case ka == signedNumber && kb == unsignedNumber:
		return compareSignedUnsigned(ra.Int(), rb.Uint()), true
	case ka == unsignedNumber && kb == signedNumber:
		return -compareSignedUnsigned(rb.Int(), ra.Uint()), true
	}
	return cmp.Compare(toFloat(ra), toFloat(rb)), true
}

func compareSignedUnsigned(i int64, u uint64) int {
	if i < 0 {
		return -1
	}
	return cmp.Compare(uint64(i), u)
}

func toFloat(rv reflect.Value) float64 {
	switch numberKindOf(rv) {
	case signedNumber:
		return float64(rv.Int())
	case unsignedNumber:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}
