package recordstore

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Record is one row from the record store: field name to raw JSON value.
// Accessors normalize the store's loose typing; core logic never sees the
// raw shapes.
type Record map[string]jx.Raw

// decodeRecord parses a single record object.
func decodeRecord(raw jx.Raw) (Record, error) {
	rec := Record{}
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		v, err := d.Raw()
		if err != nil {
			return err
		}
		rec[key] = v
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "parse record")
	}
	return rec, nil
}

// decodeRecordList parses an array of record objects. A null data value
// decodes as an empty list.
func decodeRecordList(raw jx.Raw) ([]Record, error) {
	if len(raw) == 0 || raw.Type() == jx.Null {
		return nil, nil
	}

	var records []Record
	d := jx.DecodeBytes(raw)
	if err := d.Arr(func(d *jx.Decoder) error {
		v, err := d.Raw()
		if err != nil {
			return err
		}
		rec, err := decodeRecord(v)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "parse record list")
	}
	return records, nil
}

// String returns the field as a string. Numbers are rendered in their JSON
// form so numeric IDs survive the round trip. Missing or null fields are "".
func (r Record) String(key string) string {
	raw, ok := r[key]
	if !ok || raw.Type() == jx.Null {
		return ""
	}
	switch raw.Type() {
	case jx.String:
		s, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return ""
		}
		return s
	case jx.Number:
		return strings.TrimSpace(raw.String())
	default:
		return ""
	}
}

// Bool returns the field as a bool; missing, null, or mistyped fields are
// false.
func (r Record) Bool(key string) bool {
	raw, ok := r[key]
	if !ok || raw.Type() != jx.Bool {
		return false
	}
	v, err := jx.DecodeBytes(raw).Bool()
	if err != nil {
		return false
	}
	return v
}

// Int returns the field as an int, accepting JSON numbers and numeric
// strings. The second result reports whether a usable value was present.
func (r Record) Int(key string) (int, bool) {
	raw, ok := r[key]
	if !ok || raw.Type() == jx.Null {
		return 0, false
	}
	switch raw.Type() {
	case jx.Number:
		v, err := jx.DecodeBytes(raw).Int()
		if err != nil {
			return 0, false
		}
		return v, true
	case jx.String:
		s, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return 0, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// StringList returns the field as a list of strings. The store serves list
// fields either as a JSON array or as one comma-joined string; both decode
// to the same canonical slice, with elements trimmed and empties dropped.
func (r Record) StringList(key string) []string {
	raw, ok := r[key]
	if !ok || raw.Type() == jx.Null {
		return nil
	}

	switch raw.Type() {
	case jx.Array:
		var out []string
		d := jx.DecodeBytes(raw)
		if err := d.Arr(func(d *jx.Decoder) error {
			s, err := d.Str()
			if err != nil {
				return err
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			return nil
		}); err != nil {
			return nil
		}
		return out
	case jx.String:
		s, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return nil
		}
		var out []string
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// JSONValue returns the field as raw JSON bytes. A structured value is
// returned as-is; a string value is unwrapped, so a field stored as
// serialized JSON text ("[{...}]") yields the bytes of the embedded
// document. Missing and null fields return nil.
func (r Record) JSONValue(key string) []byte {
	raw, ok := r[key]
	if !ok || raw.Type() == jx.Null {
		return nil
	}
	if raw.Type() == jx.String {
		s, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return nil
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		return []byte(s)
	}
	return []byte(raw)
}
