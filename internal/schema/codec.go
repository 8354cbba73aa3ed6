package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Encode renders r as a single-line JSON object: the type tag first, then
// every declared field in declaration order.
func Encode(r Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, tagKey(r.TypeName()), true); err != nil {
		return nil, err
	}
	for _, f := range r.Fields() {
		v, err := f.get()
		if err != nil {
			return nil, fmt.Errorf("encoding %s.%s: %w", r.TypeName(), f.Name, err)
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, f.Name, v); err != nil {
			return nil, fmt.Errorf("encoding %s.%s: %w", r.TypeName(), f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses text into a fresh *T. The instance is only returned when
// every present field decoded successfully.
func Decode[T any, P Pointer[T]](text []byte) (P, error) {
	target := newInstance[T, P]()
	raw, err := parse(text)
	if err != nil {
		return nil, &ParseError{Type: target.TypeName(), Err: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaMismatch{Expected: target.TypeName()}
	}
	if err := decodeObject(obj, target); err != nil {
		return nil, err
	}
	return target, nil
}

func newInstance[T any, P Pointer[T]]() P {
	p := P(new(T))
	if d, ok := any(p).(Defaulter); ok {
		d.SetDefaults()
	}
	return p
}

// decodeNested accepts a nested record either as its encoded text, which is
// how records are embedded on disk, or as an inline object.
func decodeNested[T any, P Pointer[T]](raw any, want Descriptor) (P, error) {
	switch v := raw.(type) {
	case string:
		return Decode[T, P]([]byte(v))
	case map[string]any:
		target := newInstance[T, P]()
		if err := decodeObject(v, target); err != nil {
			return nil, err
		}
		return target, nil
	default:
		return nil, typeError(want, raw, nil)
	}
}

func decodeObject(obj map[string]any, r Record) error {
	name := r.TypeName()
	if found, ok := findTag(obj); !ok || found != name {
		return &SchemaMismatch{Expected: name, Found: found}
	}
	for _, f := range r.Fields() {
		raw, ok := obj[f.Name]
		if !ok {
			continue
		}
		if err := f.set(raw); err != nil {
			return annotate(err, name, f.Name)
		}
	}
	return nil
}

func parse(text []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}
	return raw, nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	if err := writeValue(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return writeValue(buf, value)
}

func writeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func tagKey(typeName string) string {
	return "__" + typeName + "__"
}

// findTag returns the type named by the tag of obj. ok is false unless obj
// carries exactly one tag key and its value is true.
func findTag(obj map[string]any) (name string, ok bool) {
	var names []string
	for k := range obj {
		if len(k) > 4 && strings.HasPrefix(k, "__") && strings.HasSuffix(k, "__") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(k, "__"), "__"))
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	if len(names) > 1 {
		return names[0], false
	}
	v, isBool := obj[tagKey(names[0])].(bool)
	return names[0], isBool && v
}
