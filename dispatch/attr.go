package dispatch

import (
	"context"
	"reflect"
	"strings"
)

// AttrFilter checks one dotted attribute path on the incoming update,
// for example Attr("message.body.text").Eq("ping"). Path segments match
// the struct json tags; a nil pointer anywhere along the path simply
// fails the filter instead of erroring.
type AttrFilter struct {
	path []string
	op   attrOp
	want []any
}

type attrOp int

const (
	attrExists attrOp = iota
	attrEq
	attrNe
	attrIn
)

// Attr starts an attribute filter on path.
func Attr(path string) *AttrFilter {
	return &AttrFilter{path: strings.Split(path, "."), op: attrExists}
}

// Eq requires the attribute to equal v.
func (f *AttrFilter) Eq(v any) *AttrFilter {
	f.op, f.want = attrEq, []any{v}
	return f
}

// Ne requires the attribute to exist and differ from v.
func (f *AttrFilter) Ne(v any) *AttrFilter {
	f.op, f.want = attrNe, []any{v}
	return f
}

// In requires the attribute to equal one of vs.
func (f *AttrFilter) In(vs ...any) *AttrFilter {
	f.op, f.want = attrIn, vs
	return f
}

// Check implements Filter.
func (f *AttrFilter) Check(_ context.Context, ev *Event) (bool, map[string]any, error) {
	got, ok := resolvePath(reflect.ValueOf(ev.Update), f.path)
	if !ok {
		return false, nil, nil
	}
	switch f.op {
	case attrExists:
		return true, nil, nil
	case attrEq:
		return attrEqual(got, f.want[0]), nil, nil
	case attrNe:
		return !attrEqual(got, f.want[0]), nil, nil
	case attrIn:
		for _, w := range f.want {
			if attrEqual(got, w) {
				return true, nil, nil
			}
		}
	}
	return false, nil, nil
}

func attrEqual(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	// Numeric JSON fields decode as int64/float64 while callers pass
	// untyped literals, so fall back to a normalised comparison.
	gv, wv := reflect.ValueOf(got), reflect.ValueOf(want)
	if isNumeric(gv) && isNumeric(wv) {
		return asFloat(gv) == asFloat(wv)
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func asFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}

// resolvePath walks a struct value segment by segment, dereferencing
// pointers as it goes. Segments match json tag names first, then the
// Go field name case-insensitively.
func resolvePath(v reflect.Value, path []string) (any, bool) {
	for _, segment := range path {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, false
		}
		field, ok := fieldBySegment(v, segment)
		if !ok {
			return nil, false
		}
		v = field
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	return v.Interface(), true
}

func fieldBySegment(v reflect.Value, segment string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous {
			// Embedded structs are flattened the way encoding/json does it.
			embedded := v.Field(i)
			for embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					break
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() != reflect.Struct {
				continue
			}
			if inner, ok := fieldBySegment(embedded, segment); ok {
				return inner, true
			}
			continue
		}
		tag := sf.Tag.Get("json")
		if tag != "" {
			tag, _, _ = strings.Cut(tag, ",")
		}
		if tag == segment || strings.EqualFold(sf.Name, segment) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
