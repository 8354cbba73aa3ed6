package schema

import (
	"fmt"
	"math"
)

// Record is a schema-described type. Fields binds every declared field of
// the receiver, in declaration order, so the codec can read and assign it
// without reflection.
type Record interface {
	TypeName() string
	Fields() []Field
}

// Defaulter is implemented by records whose zero value is not their default
// constructed state. SetDefaults runs on every fresh instance before decoding.
type Defaulter interface {
	SetDefaults()
}

// Pointer constrains P to a pointer to T that implements Record.
type Pointer[T any] interface {
	*T
	Record
}

// Field is one declared field bound to a record instance.
type Field struct {
	Name string
	Desc Descriptor

	get func() (any, error)
	set func(raw any) error
}

// Codec converts values of T to and from their parsed JSON representation.
type Codec[T any] struct {
	Desc Descriptor

	// nullable codecs receive null values; the rest leave the target alone.
	nullable bool
	encode   func(T) (any, error)
	decode   func(any) (T, error)
}

func IntCodec() Codec[int] {
	return Codec[int]{
		Desc:   Descriptor{Kind: KindInt},
		encode: func(v int) (any, error) { return v, nil },
		decode: toInt,
	}
}

// FloatCodec maps NaN and infinities to null, and null back to NaN.
func FloatCodec() Codec[float64] {
	return Codec[float64]{
		Desc:     Descriptor{Kind: KindFloat},
		nullable: true,
		encode: func(v float64) (any, error) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil
			}
			return v, nil
		},
		decode: toFloat,
	}
}

func StringCodec() Codec[string] {
	return Codec[string]{
		Desc:   Descriptor{Kind: KindString},
		encode: func(v string) (any, error) { return v, nil },
		decode: toString,
	}
}

func BoolCodec() Codec[bool] {
	return Codec[bool]{
		Desc:   Descriptor{Kind: KindBool},
		encode: func(v bool) (any, error) { return v, nil },
		decode: toBool,
	}
}

// Of is the codec for a record held by value. A value record is comparable
// when all of its fields are, so it can key a mapping.
func Of[T any, P Pointer[T]]() Codec[T] {
	desc := Descriptor{Kind: KindRecord, Type: P(new(T)).TypeName()}
	return Codec[T]{
		Desc: desc,
		encode: func(v T) (any, error) {
			text, err := Encode(P(&v))
			if err != nil {
				return nil, err
			}
			return string(text), nil
		},
		decode: func(raw any) (T, error) {
			p, err := decodeNested[T, P](raw, desc)
			if err != nil {
				var zero T
				return zero, err
			}
			return *p, nil
		},
	}
}

// Ref is the codec for a record held by pointer. Nil encodes as null and
// null decodes as nil.
func Ref[T any, P Pointer[T]]() Codec[P] {
	desc := Descriptor{Kind: KindRecord, Type: P(new(T)).TypeName()}
	return Codec[P]{
		Desc:     desc,
		nullable: true,
		encode: func(v P) (any, error) {
			if v == nil {
				return nil, nil
			}
			text, err := Encode(v)
			if err != nil {
				return nil, err
			}
			return string(text), nil
		},
		decode: func(raw any) (P, error) {
			if raw == nil {
				return nil, nil
			}
			return decodeNested[T, P](raw, desc)
		},
	}
}

// SequenceOf builds the codec for an ordered sequence of elem.
func SequenceOf[T any](elem Codec[T]) Codec[[]T] {
	elemDesc := elem.Desc
	desc := Descriptor{Kind: KindSequence, Elem: &elemDesc}
	return Codec[[]T]{
		Desc: desc,
		encode: func(values []T) (any, error) {
			out := make([]any, 0, len(values))
			for i, v := range values {
				encoded, err := elem.encode(v)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				out = append(out, encoded)
			}
			return out, nil
		},
		decode: func(raw any) ([]T, error) {
			items, ok := raw.([]any)
			if !ok {
				return nil, typeError(desc, raw, nil)
			}
			out := make([]T, 0, len(items))
			for i, item := range items {
				if item == nil && !elem.nullable {
					return nil, typeError(desc, raw, fmt.Errorf("null element at index %d", i))
				}
				v, err := elem.decode(item)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

// MappingOf builds the codec for a mapping. Keys are written as JSON object
// keys: primitives are stringified and records use their encoded text.
func MappingOf[K comparable, V any](key Codec[K], value Codec[V]) Codec[map[K]V] {
	keyDesc, valueDesc := key.Desc, value.Desc
	desc := Descriptor{Kind: KindMapping, Key: &keyDesc, Value: &valueDesc}
	return Codec[map[K]V]{
		Desc: desc,
		encode: func(m map[K]V) (any, error) {
			out := make(map[string]any, len(m))
			for k, v := range m {
				encodedKey, err := key.encode(k)
				if err != nil {
					return nil, fmt.Errorf("key: %w", err)
				}
				name, err := keyString(encodedKey)
				if err != nil {
					return nil, err
				}
				encodedValue, err := value.encode(v)
				if err != nil {
					return nil, fmt.Errorf("[%s]: %w", name, err)
				}
				out[name] = encodedValue
			}
			return out, nil
		},
		decode: func(raw any) (map[K]V, error) {
			obj, ok := raw.(map[string]any)
			if !ok {
				return nil, typeError(desc, raw, nil)
			}
			out := make(map[K]V, len(obj))
			for name, item := range obj {
				k, err := key.decode(name)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", name, err)
				}
				if item == nil && !value.nullable {
					return nil, typeError(desc, raw, fmt.Errorf("null value for key %q", name))
				}
				v, err := value.decode(item)
				if err != nil {
					return nil, fmt.Errorf("[%s]: %w", name, err)
				}
				out[k] = v
			}
			return out, nil
		},
	}
}

// Bind ties a field of a record instance to a codec.
func Bind[T any](name string, target *T, c Codec[T]) Field {
	return Field{
		Name: name,
		Desc: c.Desc,
		get:  func() (any, error) { return c.encode(*target) },
		set: func(raw any) error {
			if raw == nil && !c.nullable {
				return nil
			}
			v, err := c.decode(raw)
			if err != nil {
				return err
			}
			*target = v
			return nil
		},
	}
}

func Int(name string, target *int) Field { return Bind(name, target, IntCodec()) }
func Float(name string, target *float64) Field { return Bind(name, target, FloatCodec()) }
func String(name string, target *string) Field { return Bind(name, target, StringCodec()) }
func Bool(name string, target *bool) Field { return Bind(name, target, BoolCodec()) }

// Nested binds a required record held by value. A null in the document
// leaves the default in place.
func Nested[T any, P Pointer[T]](name string, target *T) Field {
	return Bind(name, target, Of[T, P]())
}

// Optional binds a record held by pointer that may be null.
func Optional[T any, P Pointer[T]](name string, target *P) Field {
	f := Bind(name, target, Ref[T, P]())
	f.Desc.Kind = KindOptional
	return f
}

func Sequence[T any](name string, target *[]T, elem Codec[T]) Field {
	return Bind(name, target, SequenceOf(elem))
}

func Mapping[K comparable, V any](name string, target *map[K]V, key Codec[K], value Codec[V]) Field {
	return Bind(name, target, MappingOf(key, value))
}
