package plume

func registerDictCommands(i *Interp) {
	i.register("dict", cmdDict)
}

func cmdDict(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("dict subcommand ?arg ...?")
	}
	switch args[0].String() {
	case "create":
		return dictCreate(i, args[1:])
	case "get":
		return dictGet(i, args[1:])
	case "set":
		return dictSet(i, args[1:])
	case "unset":
		return dictUnset(i, args[1:])
	case "exists":
		return dictExists(i, args[1:])
	case "keys":
		return dictKeys(i, args[1:])
	case "size":
		return dictSize(i, args[1:])
	case "merge":
		return dictMerge(i, args[1:])
	default:
		return Errorf("unknown or ambiguous subcommand \"%s\": must be create, exists, get, keys, merge, set, size, or unset", args[0].String())
	}
}

func dictCreate(i *Interp, args []*Obj) Result {
	if len(args)%2 != 0 {
		return wrongArgs("dict create ?key value ...?")
	}
	d := &DictType{Items: make(map[string]*Obj, len(args)/2)}
	for j := 0; j < len(args); j += 2 {
		d = d.With(args[j].String(), args[j+1])
	}
	return OK(i.Obj(d))
}

// dict get with no keys returns the dict itself as a key value list; each
// key digs one nesting level deeper.
func dictGet(i *Interp, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("dict get dictionary ?key ...?")
	}
	cur := args[0]
	for _, key := range args[1:] {
		d, err := AsDict(cur)
		if err != nil {
			return Error(err.Error())
		}
		v, ok := d.Get(key.String())
		if !ok {
			return Errorf("key \"%s\" not known in dictionary", key.String())
		}
		cur = v
	}
	return OK(cur)
}

// dict set updates a dict variable, creating it (and intermediate nested
// dicts) as needed.
func dictSet(i *Interp, args []*Obj) Result {
	if len(args) < 3 {
		return wrongArgs("dict set dictVarName key ?key ...? value")
	}
	name := args[0].String()
	keys := args[1 : len(args)-1]
	value := args[len(args)-1]
	var cur *Obj
	if i.existsVar(name) {
		v, res := i.getVar(name)
		if res.code != ResultOK {
			return res
		}
		cur = v
	} else {
		cur = i.Dict()
	}
	out, err := dictSetRec(i, cur, keys, value)
	if err != nil {
		return Error(err.Error())
	}
	if res := i.setVar(name, out); res.code != ResultOK {
		return res
	}
	return OK(out)
}

func dictSetRec(i *Interp, dict *Obj, keys []*Obj, value *Obj) (*Obj, error) {
	d, err := AsDict(dict)
	if err != nil {
		return nil, err
	}
	key := keys[0].String()
	if len(keys) == 1 {
		return i.Obj(d.With(key, value)), nil
	}
	inner, ok := d.Get(key)
	if !ok {
		inner = i.Dict()
	}
	sub, err := dictSetRec(i, inner, keys[1:], value)
	if err != nil {
		return nil, err
	}
	return i.Obj(d.With(key, sub)), nil
}

// dict unset removes a key from a dict variable. Missing leaf keys are
// ignored; missing intermediate keys are an error.
func dictUnset(i *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("dict unset dictVarName key ?key ...?")
	}
	name := args[0].String()
	cur, res := i.getVar(name)
	if res.code != ResultOK {
		return res
	}
	out, err := dictUnsetRec(i, cur, args[1:])
	if err != nil {
		return Error(err.Error())
	}
	if res := i.setVar(name, out); res.code != ResultOK {
		return res
	}
	return OK(out)
}

func dictUnsetRec(i *Interp, dict *Obj, keys []*Obj) (*Obj, error) {
	d, err := AsDict(dict)
	if err != nil {
		return nil, err
	}
	key := keys[0].String()
	if len(keys) == 1 {
		return i.Obj(d.Without(key)), nil
	}
	inner, ok := d.Get(key)
	if !ok {
		return nil, errKeyNotKnown(key)
	}
	sub, err := dictUnsetRec(i, inner, keys[1:])
	if err != nil {
		return nil, err
	}
	return i.Obj(d.With(key, sub)), nil
}

func errKeyNotKnown(key string) error {
	return &EvalError{Message: "key \"" + key + "\" not known in dictionary"}
}

func dictExists(i *Interp, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("dict exists dictionary key ?key ...?")
	}
	cur := args[0]
	for _, key := range args[1:] {
		d, err := AsDict(cur)
		if err != nil {
			return OK(i.Bool(false))
		}
		v, ok := d.Get(key.String())
		if !ok {
			return OK(i.Bool(false))
		}
		cur = v
	}
	return OK(i.Bool(true))
}

func dictKeys(i *Interp, args []*Obj) Result {
	if len(args) != 1 {
		return wrongArgs("dict keys dictionary")
	}
	d, err := AsDict(args[0])
	if err != nil {
		return Error(err.Error())
	}
	keys := make([]*Obj, len(d.Order))
	for j, k := range d.Order {
		keys[j] = i.String(k)
	}
	return OK(i.List(keys...))
}

func dictSize(i *Interp, args []*Obj) Result {
	if len(args) != 1 {
		return wrongArgs("dict size dictionary")
	}
	d, err := AsDict(args[0])
	if err != nil {
		return Error(err.Error())
	}
	return OK(i.Int(int64(len(d.Items))))
}

// dict merge layers dicts left to right; later values win, the first
// occurrence of a key keeps its position.
func dictMerge(i *Interp, args []*Obj) Result {
	if len(args) == 0 {
		return OK(i.Dict())
	}
	out := &DictType{Items: make(map[string]*Obj)}
	for _, a := range args {
		d, err := AsDict(a)
		if err != nil {
			return Error(err.Error())
		}
		for _, k := range d.Order {
			out = out.With(k, d.Items[k])
		}
	}
	return OK(i.Obj(out))
}
