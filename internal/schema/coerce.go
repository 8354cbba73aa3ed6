package schema

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotIntegral = errors.New("value is not integral")
	errOverflow    = errors.New("value overflows int")
)

func toInt(raw any) (int, error) {
	want := Descriptor{Kind: KindInt}
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return fromInt64(i, want, raw)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, typeError(want, raw, err)
		}
		return fromFloat(f, want, raw)
	case float64:
		return fromFloat(v, want, raw)
	case int:
		return v, nil
	case int64:
		return fromInt64(v, want, raw)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromInt64(i, want, raw)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, typeError(want, raw, err)
		}
		return fromFloat(f, want, raw)
	default:
		return 0, typeError(want, raw, nil)
	}
}

func fromInt64(i int64, want Descriptor, raw any) (int, error) {
	if int64(int(i)) != i {
		return 0, typeError(want, raw, errOverflow)
	}
	return int(i), nil
}

func fromFloat(f float64, want Descriptor, raw any) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, typeError(want, raw, errNotIntegral)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, typeError(want, raw, errOverflow)
	}
	return fromInt64(int64(f), want, raw)
}

func toFloat(raw any) (float64, error) {
	want := Descriptor{Kind: KindFloat}
	switch v := raw.(type) {
	case nil:
		return math.NaN(), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, typeError(want, raw, err)
		}
		return f, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, typeError(want, raw, err)
		}
		return f, nil
	default:
		return 0, typeError(want, raw, nil)
	}
}

func toString(raw any) (string, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return "", typeError(Descriptor{Kind: KindString}, raw, nil)
}

func toBool(raw any) (bool, error) {
	want := Descriptor{Kind: KindBool}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, typeError(want, raw, err)
		}
		return b, nil
	case json.Number:
		switch v.String() {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
	}
	return false, typeError(want, raw, nil)
}

// keyString renders an encoded mapping key as a JSON object key.
func keyString(v any) (string, error) {
	switch k := v.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(k), nil
	case nil:
		return "NaN", nil
	default:
		return "", typeError(Descriptor{Kind: KindString}, v, errors.New("unsupported mapping key"))
	}
}
