package plume

import (
	"fmt"
	"reflect"
	"sort"
)

// wrapFunc wraps a plain Go function as a command, converting arguments and
// results by reflection.
func wrapFunc(fn any) CommandFunc {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()

	if fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("Register: expected function, got %T", fn))
	}

	return func(i *Interp, cmd *Obj, args []*Obj) Result {
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()

		if isVariadic {
			if len(args) < numIn-1 {
				return Errorf("wrong # args: expected at least %d, got %d", numIn-1, len(args))
			}
		} else if len(args) != numIn {
			return Errorf("wrong # args: expected %d, got %d", numIn, len(args))
		}

		callArgs := make([]reflect.Value, len(args))
		for j := 0; j < len(args); j++ {
			var paramType reflect.Type
			if isVariadic && j >= numIn-1 {
				paramType = fnType.In(numIn - 1).Elem()
			} else {
				paramType = fnType.In(j)
			}
			converted, err := convertArg(i, args[j], paramType)
			if err != nil {
				return Errorf("argument %d: %v", j+1, err)
			}
			callArgs[j] = converted
		}

		return processResults(i, fnVal.Call(callArgs), fnType)
	}
}

var objPtrType = reflect.TypeOf((*Obj)(nil))
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// convertArg converts an argument object to a Go value of the target type.
func convertArg(i *Interp, arg *Obj, targetType reflect.Type) (reflect.Value, error) {
	if targetType == objPtrType {
		return reflect.ValueOf(arg), nil
	}
	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(arg.String()), nil

	case reflect.Int:
		v, err := AsInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(int(v)), nil

	case reflect.Int64:
		v, err := AsInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil

	case reflect.Float64:
		v, err := AsDouble(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil

	case reflect.Bool:
		v, err := AsBool(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil

	case reflect.Slice:
		items, err := AsList(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		slice := reflect.MakeSlice(targetType, len(items), len(items))
		for j, item := range items {
			converted, err := convertArg(i, item, targetType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %v", j, err)
			}
			slice.Index(j).Set(converted)
		}
		return slice, nil

	case reflect.Map:
		if targetType.Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("map key must be string")
		}
		d, err := AsDict(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		m := reflect.MakeMap(targetType)
		for _, key := range d.Order {
			converted, err := convertArg(i, d.Items[key], targetType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("value for key %q: %v", key, err)
			}
			m.SetMapIndex(reflect.ValueOf(key), converted)
		}
		return m, nil

	case reflect.Interface:
		if targetType.NumMethod() == 0 {
			return reflect.ValueOf(arg.String()), nil
		}
		// a foreign object may satisfy the interface directly
		if i.ForeignRegistry != nil {
			if inst := i.ForeignRegistry.lookup(arg.String()); inst != nil {
				val := reflect.ValueOf(inst.value)
				if val.Type().Implements(targetType) {
					return val, nil
				}
			}
		}
		return reflect.Value{}, fmt.Errorf("cannot convert to interface %v", targetType)

	case reflect.Ptr:
		handleName := arg.String()
		if i.ForeignRegistry != nil {
			if inst := i.ForeignRegistry.lookup(handleName); inst != nil {
				val := reflect.ValueOf(inst.value)
				if val.Type().AssignableTo(targetType) {
					return val, nil
				}
				return reflect.Value{}, fmt.Errorf("foreign object is %T, not %v", inst.value, targetType)
			}
		}
		return reflect.Value{}, fmt.Errorf("unknown foreign object %q", handleName)

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type: %v", targetType)
	}
}

// processResults turns a reflective call's return values into a command
// result. A trailing error return fails the command.
func processResults(i *Interp, results []reflect.Value, fnType reflect.Type) Result {
	if len(results) == 0 {
		return OK("")
	}
	if fnType.NumOut() > 0 && fnType.Out(fnType.NumOut()-1).Implements(errorType) {
		last := results[len(results)-1]
		if !last.IsNil() {
			return Error(last.Interface().(error).Error())
		}
		results = results[:len(results)-1]
	}
	if len(results) == 0 {
		return OK("")
	}
	return convertResult(i, results[0])
}

// convertResult converts one Go return value to a result object.
func convertResult(i *Interp, result reflect.Value) Result {
	if !result.IsValid() {
		return OK("")
	}
	if result.Type() == objPtrType {
		if result.IsNil() {
			return OK("")
		}
		return OK(result.Interface().(*Obj))
	}

	switch result.Kind() {
	case reflect.String:
		return OK(i.String(result.String()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return OK(i.Int(result.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return OK(i.Int(int64(result.Uint())))

	case reflect.Float32, reflect.Float64:
		return OK(i.Double(result.Float()))

	case reflect.Bool:
		return OK(i.Bool(result.Bool()))

	case reflect.Slice:
		items := make([]*Obj, result.Len())
		for j := 0; j < result.Len(); j++ {
			r := convertResult(i, result.Index(j))
			if r.code != ResultOK {
				return r
			}
			items[j] = r.value(i)
		}
		return OK(i.List(items...))

	case reflect.Map:
		d := &DictType{Items: make(map[string]*Obj)}
		keys := make([]string, 0, result.Len())
		iter := result.MapRange()
		for iter.Next() {
			keys = append(keys, fmt.Sprintf("%v", iter.Key().Interface()))
		}
		// stable output: map iteration order is random
		sort.Strings(keys)
		for _, k := range keys {
			v := result.MapIndex(reflect.ValueOf(k))
			r := convertResult(i, v)
			if r.code != ResultOK {
				return r
			}
			d = d.With(k, r.value(i))
		}
		return OK(i.Obj(d))

	case reflect.Ptr, reflect.Interface:
		if result.IsNil() {
			return OK("")
		}
		return OK(i.String(fmt.Sprintf("%v", result.Interface())))

	default:
		return OK(i.String(fmt.Sprintf("%v", result.Interface())))
	}
}
