package plume

// Obj is a Plume value.
// It follows TCL semantics where values have both a string representation
// and an optional internal representation that can be lazily computed.
//
// The canonical string, once present, is never discarded: reading "007" as
// an integer caches an int representation but leaves the string alone, so
// repeated round-trips never reformat user text.
type Obj struct {
	bytes    string  // canonical string representation
	hasBytes bool    // true once bytes is valid ("" is a legal value)
	intrep   ObjType // internal representation (nil = pure string)
	interp   *Interp // owning interpreter
}

// ObjType defines the core behavior for an internal representation.
type ObjType interface {
	// Name returns the type name (e.g., "int", "list").
	Name() string

	// UpdateString regenerates string representation from this internal rep.
	UpdateString() string

	// Dup creates a copy of this internal representation.
	Dup() ObjType
}

// IntoInt can convert directly to int64.
type IntoInt interface {
	IntoInt() (int64, bool)
}

// IntoDouble can convert directly to float64.
type IntoDouble interface {
	IntoDouble() (float64, bool)
}

// IntoList can convert directly to a list.
type IntoList interface {
	IntoList() ([]*Obj, bool)
}

// IntoDict can convert directly to a dictionary.
type IntoDict interface {
	IntoDict() (map[string]*Obj, []string, bool)
}

// IntoBool can convert directly to a boolean.
type IntoBool interface {
	IntoBool() (bool, bool)
}

// String returns the string representation of the object, computing and
// caching it from the internal representation if absent.
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	if !o.hasBytes && o.intrep != nil {
		o.bytes = o.intrep.UpdateString()
		o.hasBytes = true
	}
	return o.bytes
}

// Type returns the type name of the object.
// Returns "string" for pure string objects (no internal representation).
func (o *Obj) Type() string {
	if o == nil || o.intrep == nil {
		return "string"
	}
	return o.intrep.Name()
}

// InternalRep returns the internal representation of the object.
// Returns nil for pure string objects.
//
// Use type assertion to access custom ObjType implementations:
//
//	if myType, ok := obj.InternalRep().(*MyType); ok {
//	    // use myType
//	}
func (o *Obj) InternalRep() ObjType {
	if o == nil {
		return nil
	}
	return o.intrep
}

// Copy creates a shallow copy of the object.
// If the object has an internal representation, it is duplicated via Dup().
// The copy remains tied to the same interpreter as the original.
func (o *Obj) Copy() *Obj {
	if o == nil {
		return nil
	}
	c := &Obj{bytes: o.bytes, hasBytes: o.hasBytes, interp: o.interp}
	if o.intrep != nil {
		c.intrep = o.intrep.Dup()
	}
	return c
}

// Int returns the integer value of this object, shimmering if needed.
func (o *Obj) Int() (int64, error) {
	return AsInt(o)
}

// Double returns the float64 value of this object, shimmering if needed.
func (o *Obj) Double() (float64, error) {
	return AsDouble(o)
}

// Bool returns the boolean value of this object using TCL boolean rules.
func (o *Obj) Bool() (bool, error) {
	return AsBool(o)
}

// List returns the list elements of this object, shimmering if needed.
// If the object is a pure string, it is parsed as a TCL list. The cached
// string representation is kept, so element boundaries survive round trips.
func (o *Obj) List() ([]*Obj, error) {
	return AsList(o)
}

// Dict returns the dict representation of this object, shimmering if needed.
// If the object is a pure string, it is parsed as a TCL dict.
func (o *Obj) Dict() (*DictType, error) {
	return AsDict(o)
}
