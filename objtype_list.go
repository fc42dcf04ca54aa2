package plume

import "strings"

// ListType is the internal representation for list values.
type ListType []*Obj

func (t ListType) Name() string { return "list" }

func (t ListType) Dup() ObjType {
	dup := make(ListType, len(t))
	copy(dup, t)
	return dup
}

func (t ListType) UpdateString() string {
	var b strings.Builder
	for i, item := range t {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteListElement(item.String()))
	}
	return b.String()
}

func (t ListType) IntoList() ([]*Obj, bool) { return t, true }
