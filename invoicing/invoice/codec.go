package invoice

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

var ErrNotObject = errors.New("invoice document is not a JSON object")

// DecodeJSON parses a JSON object into an Invoice. Numbers are kept as
// json.Number so nothing is lost to float rounding.
func DecodeJSON(data []byte) (Invoice, error) {
	if err := jx.DecodeBytes(data).Validate(); err != nil {
		return nil, errors.Wrap(err, "decode invoice")
	}
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return nil, ErrNotObject
	}
	v, err := DecodeValue(d)
	if err != nil {
		return nil, errors.Wrap(err, "decode invoice")
	}
	return Invoice(v.(map[string]any)), nil
}

// DecodeValue reads any JSON value into map[string]any, []any, string,
// json.Number, bool or nil.
func DecodeValue(d *jx.Decoder) (any, error) {
	switch t := d.Next(); t {
	case jx.Object:
		obj := map[string]any{}
		err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			v, err := DecodeValue(d)
			if err != nil {
				return errors.Wrapf(err, "field %q", key)
			}
			obj[string(key)] = v
			return nil
		})
		return obj, err
	case jx.Array:
		arr := []any{}
		err := d.Arr(func(d *jx.Decoder) error {
			v, err := DecodeValue(d)
			if err != nil {
				return err
			}
			arr = append(arr, v)
			return nil
		})
		return arr, err
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		return json.Number(n.String()), nil
	case jx.Bool:
		return d.Bool()
	case jx.Null:
		return nil, d.Null()
	default:
		return nil, errors.Errorf("unexpected JSON token %v", t)
	}
}

// EncodeJSON renders the invoice as a JSON object with keys sorted.
func EncodeJSON(inv Invoice) ([]byte, error) {
	var e jx.Encoder
	if err := EncodeValue(&e, map[string]any(inv)); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func EncodeValue(e *jx.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		e.Null()
	case Invoice:
		return encodeObject(e, x)
	case map[string]any:
		return encodeObject(e, x)
	case []any:
		e.ArrStart()
		for _, el := range x {
			if err := EncodeValue(e, el); err != nil {
				return err
			}
		}
		e.ArrEnd()
	case []map[string]any:
		e.ArrStart()
		for _, el := range x {
			if err := encodeObject(e, el); err != nil {
				return err
			}
		}
		e.ArrEnd()
	case []string:
		e.ArrStart()
		for _, s := range x {
			e.Str(s)
		}
		e.ArrEnd()
	case string:
		e.Str(x)
	case bool:
		e.Bool(x)
	case json.Number:
		e.Num(jx.Num(x))
	case jx.Num:
		e.Num(x)
	case int:
		e.Int64(int64(x))
	case int32:
		e.Int64(int64(x))
	case int64:
		e.Int64(x)
	case uint:
		e.Num(jx.Num(strconv.FormatUint(uint64(x), 10)))
	case uint64:
		e.Num(jx.Num(strconv.FormatUint(x, 10)))
	case float32:
		e.Float64(float64(x))
	case float64:
		e.Float64(x)
	case json.Marshaler:
		b, err := x.MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "marshal %T", v)
		}
		e.Raw(b)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return errors.Wrapf(err, "marshal %T", v)
		}
		e.Raw(b)
	}
	return nil
}

func encodeObject(e *jx.Encoder, obj map[string]any) error {
	e.ObjStart()
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		e.FieldStart(k)
		if err := EncodeValue(e, obj[k]); err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
	}
	e.ObjEnd()
	return nil
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
