package plume

// ForeignType is the internal representation for foreign (host-provided)
// values. The string representation is the instance's handle name, which
// doubles as the instance's command name, unless the type supplies a custom
// display function.
type ForeignType struct {
	TypeName string
	Value    any
	handle   string
	display  func() string
}

func (t *ForeignType) Name() string { return "foreign:" + t.TypeName }
func (t *ForeignType) Dup() ObjType { return t }

func (t *ForeignType) UpdateString() string {
	if t.display != nil {
		return t.display()
	}
	return t.handle
}
