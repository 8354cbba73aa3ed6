package store

import "strings"

// maxPadWidth bounds the zero-padded widths tried when matching identifiers.
const maxPadWidth = 10

// Filter selects records by natural identifier. Identifiers are compared
// after trimming whitespace and tolerate zero padding: a key matches when
// the key itself, the key with zeros trimmed from both ends or from the
// left, or the key left-padded with zeros to a width in
// [len, max(len+3, 10)) is wanted.
type Filter struct {
	wanted map[string]struct{}
}

// NewFilter returns nil, which matches everything, when ids is empty.
func NewFilter(ids []string) *Filter {
	if len(ids) == 0 {
		return nil
	}
	f := &Filter{wanted: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		f.wanted[strings.TrimSpace(id)] = struct{}{}
	}
	return f
}

func (f *Filter) Match(key string) bool {
	if f == nil {
		return true
	}
	key = strings.TrimSpace(key)
	for _, candidate := range []string{key, strings.Trim(key, "0"), strings.TrimLeft(key, "0")} {
		if f.has(candidate) {
			return true
		}
	}
	limit := max(len(key)+3, maxPadWidth)
	for width := len(key); width < limit; width++ {
		if f.has(strings.Repeat("0", width-len(key)) + key) {
			return true
		}
	}
	return false
}

func (f *Filter) has(id string) bool {
	_, ok := f.wanted[id]
	return ok
}
