package plume

import (
	"strconv"
	"strings"
)

// Shimmering conversions. Each As* function tries the cached internal
// representation first, then parses the canonical string. A successful parse
// caches the new internal representation without touching the string, so the
// original text survives; a failed parse leaves the object untouched.

// AsInt converts o to int64, shimmering if needed.
func AsInt(o *Obj) (int64, error) {
	if o == nil {
		return 0, nil
	}
	if c, ok := o.intrep.(IntoInt); ok {
		if v, ok := c.IntoInt(); ok {
			return v, nil
		}
	}
	s := strings.TrimSpace(o.String())
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, conversionError("integer", o)
	}
	o.intrep = IntType(v)
	return v, nil
}

// AsDouble converts o to float64, shimmering if needed.
func AsDouble(o *Obj) (float64, error) {
	if o == nil {
		return 0, nil
	}
	if c, ok := o.intrep.(IntoDouble); ok {
		if v, ok := c.IntoDouble(); ok {
			return v, nil
		}
	}
	s := strings.TrimSpace(o.String())
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, conversionError("floating-point number", o)
	}
	o.intrep = DoubleType(v)
	return v, nil
}

// AsBool converts o to a boolean using TCL boolean rules: any numeric value
// is tested against zero, otherwise "true"/"yes"/"on" and "false"/"no"/"off"
// (case-insensitive) are accepted.
func AsBool(o *Obj) (bool, error) {
	if o == nil {
		return false, nil
	}
	if c, ok := o.intrep.(IntoBool); ok {
		if v, ok := c.IntoBool(); ok {
			return v, nil
		}
	}
	s := strings.TrimSpace(o.String())
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v != 0, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v != 0, nil
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, conversionError("boolean", o)
}

// AsList converts o to a list, shimmering if needed.
// Pure strings are parsed with the list grammar (brace and quote grouping).
func AsList(o *Obj) ([]*Obj, error) {
	if o == nil {
		return nil, nil
	}
	if c, ok := o.intrep.(IntoList); ok {
		if v, ok := c.IntoList(); ok {
			return v, nil
		}
	}
	elems, err := scanList(o.String())
	if err != nil {
		return nil, err
	}
	items := make([]*Obj, len(elems))
	for i, e := range elems {
		items[i] = &Obj{bytes: e, hasBytes: true, interp: o.interp}
	}
	o.intrep = ListType(items)
	return items, nil
}

// AsDict converts o to a dict, shimmering if needed.
// Lists and strings with an even number of elements convert; later
// duplicate keys overwrite earlier ones but keep the first key's position.
func AsDict(o *Obj) (*DictType, error) {
	if o == nil {
		return &DictType{Items: make(map[string]*Obj)}, nil
	}
	if c, ok := o.intrep.(IntoDict); ok {
		if items, order, ok := c.IntoDict(); ok {
			d := &DictType{Items: items, Order: order}
			o.intrep = d
			return d, nil
		}
	}
	items, err := AsList(o)
	if err != nil {
		return nil, err
	}
	if len(items)%2 != 0 {
		return nil, errMissingDictValue
	}
	d := &DictType{Items: make(map[string]*Obj, len(items)/2)}
	for i := 0; i < len(items); i += 2 {
		key := items[i].String()
		if _, exists := d.Items[key]; !exists {
			d.Order = append(d.Order, key)
		}
		d.Items[key] = items[i+1]
	}
	o.intrep = d
	return d, nil
}
