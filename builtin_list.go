package plume

func registerListCommands(i *Interp) {
	i.register("list", cmdList)
	i.register("lindex", cmdLindex)
	i.register("llength", cmdLlength)
	i.register("lappend", cmdLappend)
	i.register("lrange", cmdLrange)
	i.register("lset", cmdLset)
	i.register("concat", cmdConcat)
}

func cmdList(i *Interp, cmd *Obj, args []*Obj) Result {
	return OK(i.List(args...))
}

// lindex with no indices returns the list itself; each further index digs
// one level deeper. Out-of-range reads yield the empty string.
func cmdLindex(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("lindex list ?index ...?")
	}
	cur := args[0]
	for _, idxArg := range args[1:] {
		items, err := AsList(cur)
		if err != nil {
			return Error(err.Error())
		}
		idx, err := parseIndex(idxArg.String(), len(items))
		if err != nil {
			return Error(err.Error())
		}
		if idx < 0 || idx >= len(items) {
			return OK("")
		}
		cur = items[idx]
	}
	return OK(cur)
}

func cmdLlength(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 1 {
		return wrongArgs("llength list")
	}
	items, err := AsList(args[0])
	if err != nil {
		return Error(err.Error())
	}
	return OK(i.Int(int64(len(items))))
}

// lappend creates the variable as an empty list when missing.
func cmdLappend(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 1 {
		return wrongArgs("lappend varName ?value value ...?")
	}
	name := args[0].String()
	var items []*Obj
	if i.existsVar(name) {
		v, res := i.getVar(name)
		if res.code != ResultOK {
			return res
		}
		elems, err := AsList(v)
		if err != nil {
			return Error(err.Error())
		}
		items = append(items, elems...)
	}
	items = append(items, args[1:]...)
	out := i.List(items...)
	if res := i.setVar(name, out); res.code != ResultOK {
		return res
	}
	return OK(out)
}

func cmdLrange(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) != 3 {
		return wrongArgs("lrange list first last")
	}
	items, err := AsList(args[0])
	if err != nil {
		return Error(err.Error())
	}
	first, err := parseIndex(args[1].String(), len(items))
	if err != nil {
		return Error(err.Error())
	}
	last, err := parseIndex(args[2].String(), len(items))
	if err != nil {
		return Error(err.Error())
	}
	if first < 0 {
		first = 0
	}
	if last >= len(items) {
		last = len(items) - 1
	}
	if first > last {
		return OK(i.List())
	}
	return OK(i.List(items[first : last+1]...))
}

// lset rewrites one (possibly nested) element of a list variable and writes
// the updated list back. With no indices the value replaces the whole list.
func cmdLset(i *Interp, cmd *Obj, args []*Obj) Result {
	if len(args) < 2 {
		return wrongArgs("lset listVar ?index ...? value")
	}
	name := args[0].String()
	value := args[len(args)-1]
	indices := args[1 : len(args)-1]
	// "lset v {1 2} x" addresses nested elements through one index list
	if len(indices) == 1 {
		if nested, err := AsList(indices[0]); err == nil && len(nested) > 1 {
			indices = nested
		}
	}
	cur, res := i.getVar(name)
	if res.code != ResultOK {
		return res
	}
	out, err := lsetRec(i, cur, indices, value)
	if err != nil {
		return Error(err.Error())
	}
	if res := i.setVar(name, out); res.code != ResultOK {
		return res
	}
	return OK(out)
}

func lsetRec(i *Interp, list *Obj, indices []*Obj, value *Obj) (*Obj, error) {
	if len(indices) == 0 {
		return value, nil
	}
	items, err := AsList(list)
	if err != nil {
		return nil, err
	}
	idx, err := parseIndex(indices[0].String(), len(items))
	if err != nil {
		return nil, err
	}
	// writing one past the end extends the list
	if idx < 0 || idx > len(items) {
		return nil, badIndex(indices[0].String())
	}
	out := make([]*Obj, len(items), len(items)+1)
	copy(out, items)
	if idx == len(items) {
		if len(indices) > 1 {
			return nil, badIndex(indices[0].String())
		}
		out = append(out, value)
		return i.List(out...), nil
	}
	sub, err := lsetRec(i, out[idx], indices[1:], value)
	if err != nil {
		return nil, err
	}
	out[idx] = sub
	return i.List(out...), nil
}

func cmdConcat(i *Interp, cmd *Obj, args []*Obj) Result {
	return OK(concatWords(args))
}
