package schema

import "fmt"

// Kind identifies the shape of a declared field.
type Kind int

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindBool
	KindRecord
	KindOptional
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindRecord:
		return "record"
	case KindOptional:
		return "optional"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor is the declared type of a field. Type is set for record and
// optional kinds, Elem for sequences, Key and Value for mappings.
type Descriptor struct {
	Kind  Kind
	Type  string
	Elem  *Descriptor
	Key   *Descriptor
	Value *Descriptor
}

// IsPrimitive reports whether the descriptor is one of int, float, string or bool.
func (d Descriptor) IsPrimitive() bool {
	switch d.Kind {
	case KindInt, KindFloat, KindString, KindBool:
		return true
	}
	return false
}

// RecordTypes returns every record type name the descriptor refers to,
// including those nested in sequences and mappings.
func (d Descriptor) RecordTypes() []string {
	var names []string
	switch d.Kind {
	case KindRecord, KindOptional:
		names = append(names, d.Type)
	case KindSequence:
		if d.Elem != nil {
			names = append(names, d.Elem.RecordTypes()...)
		}
	case KindMapping:
		if d.Key != nil {
			names = append(names, d.Key.RecordTypes()...)
		}
		if d.Value != nil {
			names = append(names, d.Value.RecordTypes()...)
		}
	}
	return names
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindRecord:
		return d.Type
	case KindOptional:
		return fmt.Sprintf("optional<%s>", d.Type)
	case KindSequence:
		if d.Elem == nil {
			return "sequence<?>"
		}
		return fmt.Sprintf("sequence<%s>", d.Elem)
	case KindMapping:
		if d.Key == nil || d.Value == nil {
			return "mapping<?>"
		}
		return fmt.Sprintf("mapping<%s,%s>", d.Key, d.Value)
	default:
		return d.Kind.String()
	}
}
