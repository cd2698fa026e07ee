package tag

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/teranos/dxfcore/errors"
)

// Cast converts a raw text value into the type required by code. Integer
// codes accept float text and truncate it (some producers write 1.0 into
// integer fields). Point codes must be cast with CastPoint.
func Cast(code int, raw string) (Tag, error) {
	switch TypeOf(code) {
	case TypePoint:
		// single coordinate of a point code, e.g. a lone x value
		f, err := parseFloat(raw)
		if err != nil {
			return Tag{}, invalidValue(code, raw)
		}
		return Tag{Code: code, Value: f}, nil
	case TypeBinary:
		data, err := hex.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return Tag{}, invalidValue(code, raw)
		}
		return Tag{Code: code, Value: data}, nil
	case TypeFloat:
		f, err := parseFloat(raw)
		if err != nil {
			return Tag{}, invalidValue(code, raw)
		}
		return Tag{Code: code, Value: f}, nil
	case TypeInt:
		i, err := parseInt(raw)
		if err != nil {
			return Tag{}, invalidValue(code, raw)
		}
		return Tag{Code: code, Value: i}, nil
	}
	if code == Structure {
		raw = strings.TrimSpace(raw)
	}
	return Tag{Code: code, Value: raw}, nil
}

// CastPoint builds a point tag from the raw text of 2 or 3 coordinates
func CastPoint(code int, coords ...string) (Tag, error) {
	if len(coords) < 2 || len(coords) > 3 {
		return Tag{}, errors.Wrapf(errors.ErrInvalidValue, "point %d requires 2 or 3 coordinates, got %d", code, len(coords))
	}
	values := make([]float64, len(coords))
	for i, c := range coords {
		f, err := parseFloat(c)
		if err != nil {
			return Tag{}, errors.Wrapf(errors.ErrInvalidValue, "invalid floating point value %q for axis %d of point %d", c, i, code)
		}
		values[i] = f
	}
	return NewPoint(code, values...), nil
}

// Coerce converts a Go value into the canonical value type of code. It is
// used on the trusted path where values come from code, not from files.
func Coerce(code int, v interface{}) (interface{}, error) {
	switch TypeOf(code) {
	case TypePoint:
		return coercePoint(code, v)
	case TypeBinary:
		switch b := v.(type) {
		case []byte:
			return append([]byte(nil), b...), nil
		case string:
			data, err := hex.DecodeString(b)
			if err != nil {
				return nil, invalidValue(code, b)
			}
			return data, nil
		}
	case TypeFloat:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		case int:
			return float64(f), nil
		case int16:
			return float64(f), nil
		case int32:
			return float64(f), nil
		case int64:
			return float64(f), nil
		case string:
			return parseFloat(f)
		}
	case TypeInt:
		switch i := v.(type) {
		case int:
			return i, nil
		case int8:
			return int(i), nil
		case int16:
			return int(i), nil
		case int32:
			return int(i), nil
		case int64:
			return int(i), nil
		case uint8:
			return int(i), nil
		case bool:
			if i {
				return 1, nil
			}
			return 0, nil
		case float64:
			return int(i), nil
		case string:
			return parseInt(i)
		}
	default:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		}
	}
	return nil, errors.Wrapf(errors.ErrInvalidValue, "cannot use %T as value of group code %d", v, code)
}

func coercePoint(code int, v interface{}) (Point, error) {
	switch p := v.(type) {
	case Point:
		if p.Dims == 2 || p.Dims == 3 {
			return p, nil
		}
	case []float64:
		switch len(p) {
		case 2:
			return Vec2(p[0], p[1]), nil
		case 3:
			return Vec3(p[0], p[1], p[2]), nil
		}
	}
	return Point{}, errors.Wrapf(errors.ErrInvalidValue, "cannot use %v as point value of group code %d", v, code)
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.Atoi(raw); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Wrapf(errors.ErrInvalidValue, "%q is not an integer", raw)
	}
	return int(f), nil
}

func invalidValue(code int, raw string) error {
	return errors.Wrapf(errors.ErrInvalidValue, "invalid value %q for group code %d", raw, code)
}
