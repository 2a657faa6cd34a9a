package recordstore

import (
	"fmt"
	"sort"

	"github.com/go-faster/jx"
)

// encodeQuery renders a Query as the record store's fetch payload.
func encodeQuery(q Query) []byte {
	var e jx.Encoder
	e.ObjStart()

	if len(q.Fields) > 0 {
		e.FieldStart("fields")
		e.ArrStart()
		for _, f := range q.Fields {
			e.Str(f)
		}
		e.ArrEnd()
	}

	if len(q.Where) > 0 {
		e.FieldStart("where")
		encodeConditions(&e, q.Where)
	}
	if len(q.AnyOf) > 0 {
		e.FieldStart("anyOf")
		encodeConditions(&e, q.AnyOf)
	}

	if len(q.OrderBy) > 0 {
		e.FieldStart("orderBy")
		e.ArrStart()
		for _, o := range q.OrderBy {
			e.ObjStart()
			e.FieldStart("fieldName")
			e.Str(o.Field)
			e.FieldStart("sortType")
			if o.Desc {
				e.Str("DESC")
			} else {
				e.Str("ASC")
			}
			e.ObjEnd()
		}
		e.ArrEnd()
	}

	if q.Limit > 0 || q.Offset > 0 {
		e.FieldStart("pagingInfo")
		e.ObjStart()
		e.FieldStart("limit")
		e.Int(q.Limit)
		e.FieldStart("offset")
		e.Int(q.Offset)
		e.ObjEnd()
	}

	e.ObjEnd()
	return e.Bytes()
}

func encodeConditions(e *jx.Encoder, conds []Condition) {
	e.ArrStart()
	for _, c := range conds {
		e.ObjStart()
		e.FieldStart("fieldName")
		e.Str(c.Field)
		e.FieldStart("operator")
		e.Str(string(c.Operator))
		e.FieldStart("values")
		e.ArrStart()
		for _, v := range c.Values {
			e.Str(v)
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
}

// encodeFields renders a create/update payload. Keys are emitted in sorted
// order so payloads are stable for tests.
func encodeFields(fields map[string]any) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("fields")
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		encodeValue(&e, fields[k])
	}
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}

func encodeValue(e *jx.Encoder, v any) {
	switch val := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(val)
	case bool:
		e.Bool(val)
	case int:
		e.Int(val)
	case int64:
		e.Int64(val)
	case float64:
		e.Float64(val)
	case []string:
		e.ArrStart()
		for _, s := range val {
			e.Str(s)
		}
		e.ArrEnd()
	case jx.Raw:
		e.Raw(val)
	default:
		// Field payloads are built by this module's storage layer; an
		// unsupported type is a programming error.
		panic(fmt.Sprintf("recordstore: unsupported field type %T", v))
	}
}
