package plume

import "strings"

// DictType is the internal representation for dictionary values.
// Keys are unique; Order records insertion order.
type DictType struct {
	Items map[string]*Obj
	Order []string
}

func (t *DictType) Name() string { return "dict" }

func (t *DictType) Dup() ObjType {
	newItems := make(map[string]*Obj, len(t.Items))
	for k, v := range t.Items {
		newItems[k] = v
	}
	newOrder := make([]string, len(t.Order))
	copy(newOrder, t.Order)
	return &DictType{Items: newItems, Order: newOrder}
}

func (t *DictType) UpdateString() string {
	var b strings.Builder
	for i, key := range t.Order {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteListElement(key))
		b.WriteByte(' ')
		b.WriteString(quoteListElement(t.Items[key].String()))
	}
	return b.String()
}

func (t *DictType) IntoDict() (map[string]*Obj, []string, bool) {
	return t.Items, t.Order, true
}

func (t *DictType) IntoList() ([]*Obj, bool) {
	list := make([]*Obj, 0, len(t.Order)*2)
	var interp *Interp
	for _, v := range t.Items {
		if v != nil && v.interp != nil {
			interp = v.interp
			break
		}
	}
	for _, k := range t.Order {
		list = append(list, &Obj{bytes: k, hasBytes: true, interp: interp}, t.Items[k])
	}
	return list, true
}

// Get returns the value for key and whether it exists.
func (t *DictType) Get(key string) (*Obj, bool) {
	v, ok := t.Items[key]
	return v, ok
}

// With returns a copy of the dict with key set to val (value semantics).
func (t *DictType) With(key string, val *Obj) *DictType {
	d := t.Dup().(*DictType)
	if _, exists := d.Items[key]; !exists {
		d.Order = append(d.Order, key)
	}
	d.Items[key] = val
	return d
}

// Without returns a copy of the dict with key removed.
// Removing a missing key is a no-op.
func (t *DictType) Without(key string) *DictType {
	d := t.Dup().(*DictType)
	if _, exists := d.Items[key]; exists {
		delete(d.Items, key)
		for i, k := range d.Order {
			if k == key {
				d.Order = append(d.Order[:i], d.Order[i+1:]...)
				break
			}
		}
	}
	return d
}
