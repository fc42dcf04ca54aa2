package plume

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// foreignTypeInfo stores runtime information about a registered foreign type.
type foreignTypeInfo struct {
	name         string
	newFunc      reflect.Value            // constructor function
	methods      map[string]reflect.Value // method name -> function
	stringRep    reflect.Value            // optional string representation function
	destroy      reflect.Value            // optional destructor function
	receiverType reflect.Type
}

// foreignInstance is a live foreign object: its handle name doubles as the
// instance command.
type foreignInstance struct {
	typeName   string
	handleName string
	obj        *Obj
	value      any
}

// ForeignRegistry manages foreign type definitions and object instances.
type ForeignRegistry struct {
	mu        sync.RWMutex
	types     map[string]*foreignTypeInfo
	instances map[string]*foreignInstance
	counters  map[string]int
}

func newForeignRegistry() *ForeignRegistry {
	return &ForeignRegistry{
		types:     make(map[string]*foreignTypeInfo),
		instances: make(map[string]*foreignInstance),
		counters:  make(map[string]int),
	}
}

func (r *ForeignRegistry) lookup(handleName string) *foreignInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[handleName]
}

// TypeDef defines a foreign type that can be exposed to TCL.
//
// Foreign types allow Go structs to be used as TCL objects with methods.
// See [RegisterType] for usage.
type TypeDef[T any] struct {
	// New is the constructor function, called when "TypeName new" is evaluated.
	// Required.
	New func() T

	// Methods maps method names to Go functions.
	// Each function's first parameter must be the receiver type T.
	// Additional parameters and return values are auto-converted.
	Methods map[string]any

	// String optionally provides a custom string representation.
	// If nil, the instance's handle name is used.
	String func(T) string

	// Destroy is called when the object is explicitly destroyed.
	// Use for cleanup (closing files, connections, etc.).
	Destroy func(T)
}

// RegisterType registers a foreign type with the interpreter.
//
// After registration, the type name becomes a command that supports "new"
// to create instances. Instances can then call methods using $obj method args.
//
// Example:
//
//	type Counter struct {
//	    value int
//	}
//
//	plume.RegisterType[*Counter](interp, "Counter", plume.TypeDef[*Counter]{
//	    New: func() *Counter { return &Counter{} },
//	    Methods: map[string]any{
//	        "get":  func(c *Counter) int { return c.value },
//	        "set":  func(c *Counter, v int) { c.value = v },
//	        "incr": func(c *Counter) int { c.value++; return c.value },
//	    },
//	})
//
//	// In TCL:
//	// set c [Counter new]
//	// $c set 10
//	// $c incr  ;# returns 11
func RegisterType[T any](i *Interp, typeName string, def TypeDef[T]) error {
	if i.ForeignRegistry == nil {
		i.ForeignRegistry = newForeignRegistry()
	}

	i.ForeignRegistry.mu.Lock()
	defer i.ForeignRegistry.mu.Unlock()

	if def.New == nil {
		return fmt.Errorf("RegisterType: New function is required for type %s", typeName)
	}

	info := &foreignTypeInfo{
		name:         typeName,
		newFunc:      reflect.ValueOf(def.New),
		methods:      make(map[string]reflect.Value),
		receiverType: reflect.TypeOf((*T)(nil)).Elem(),
	}
	for name, fn := range def.Methods {
		info.methods[name] = reflect.ValueOf(fn)
	}
	if def.String != nil {
		info.stringRep = reflect.ValueOf(def.String)
	}
	if def.Destroy != nil {
		info.destroy = reflect.ValueOf(def.Destroy)
	}

	i.ForeignRegistry.types[typeName] = info
	i.ForeignRegistry.counters[typeName] = 1

	i.register(typeName, func(interp *Interp, cmd *Obj, args []*Obj) Result {
		return interp.foreignConstructor(typeName, cmd, args)
	})
	return nil
}

// foreignConstructor handles "TypeName new" calls.
func (i *Interp) foreignConstructor(typeName string, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(typeName + " subcommand ?arg ...?")
	}
	if sub := args[0].String(); sub != "new" {
		return Errorf("unknown subcommand \"%s\": must be new", sub)
	}

	i.ForeignRegistry.mu.RLock()
	info, ok := i.ForeignRegistry.types[typeName]
	i.ForeignRegistry.mu.RUnlock()
	if !ok {
		return Errorf("unknown foreign type \"%s\"", typeName)
	}

	results := info.newFunc.Call(nil)
	if len(results) == 0 {
		return Errorf("%s new: constructor returned no value", typeName)
	}
	value := results[0].Interface()

	i.ForeignRegistry.mu.Lock()
	counter := i.ForeignRegistry.counters[typeName]
	i.ForeignRegistry.counters[typeName] = counter + 1
	i.ForeignRegistry.mu.Unlock()
	handleName := fmt.Sprintf("%s%d", strings.ToLower(typeName), counter)

	ft := &ForeignType{TypeName: typeName, Value: value, handle: handleName}
	if info.stringRep.IsValid() {
		ft.display = func() string {
			out := info.stringRep.Call([]reflect.Value{reflect.ValueOf(value)})
			return out[0].String()
		}
	}
	obj := i.Obj(ft)

	instance := &foreignInstance{
		typeName:   typeName,
		handleName: handleName,
		obj:        obj,
		value:      value,
	}
	i.ForeignRegistry.mu.Lock()
	i.ForeignRegistry.instances[handleName] = instance
	i.ForeignRegistry.mu.Unlock()

	// object-as-command: the handle dispatches method calls
	i.register(handleName, func(interp *Interp, cmd *Obj, args []*Obj) Result {
		return interp.foreignMethodDispatch(handleName, cmd, args)
	})
	return OK(obj)
}

// foreignMethodDispatch handles "$handle method args..." calls.
func (i *Interp) foreignMethodDispatch(handleName string, cmd *Obj, args []*Obj) Result {
	if len(args) == 0 {
		return wrongArgs(handleName + " method ?arg ...?")
	}
	methodName := args[0].String()
	methodArgs := args[1:]

	instance := i.ForeignRegistry.lookup(handleName)
	if instance == nil {
		return Errorf("invalid object handle \"%s\"", handleName)
	}
	if methodName == "destroy" {
		return i.foreignDestroy(handleName)
	}

	i.ForeignRegistry.mu.RLock()
	info, ok := i.ForeignRegistry.types[instance.typeName]
	i.ForeignRegistry.mu.RUnlock()
	if !ok {
		return Errorf("unknown foreign type \"%s\"", instance.typeName)
	}

	methodFunc, ok := info.methods[methodName]
	if !ok {
		methods := make([]string, 0, len(info.methods)+1)
		for name := range info.methods {
			methods = append(methods, name)
		}
		methods = append(methods, "destroy")
		sort.Strings(methods)
		return Errorf("unknown method \"%s\": must be %s", methodName, strings.Join(methods, ", "))
	}
	return i.callForeignMethod(instance.value, methodFunc, methodArgs)
}

// callForeignMethod calls a method with automatic argument conversion.
// The first parameter is the receiver.
func (i *Interp) callForeignMethod(receiver any, methodFunc reflect.Value, args []*Obj) Result {
	methodType := methodFunc.Type()
	numParams := methodType.NumIn()
	if numParams < 1 {
		return Error("method must have at least one parameter (receiver)")
	}
	if len(args) != numParams-1 {
		return Errorf("wrong # args: expected %d, got %d", numParams-1, len(args))
	}

	callArgs := make([]reflect.Value, numParams)
	callArgs[0] = reflect.ValueOf(receiver)
	for j := 0; j < len(args); j++ {
		converted, err := convertArg(i, args[j], methodType.In(j+1))
		if err != nil {
			return Errorf("argument %d: %v", j+1, err)
		}
		callArgs[j+1] = converted
	}
	return processResults(i, methodFunc.Call(callArgs), methodType)
}

// foreignDestroy handles the "destroy" method: the destructor runs, the
// instance command disappears, and the handle object loses its foreign rep.
func (i *Interp) foreignDestroy(handleName string) Result {
	i.ForeignRegistry.mu.Lock()
	instance, ok := i.ForeignRegistry.instances[handleName]
	if !ok {
		i.ForeignRegistry.mu.Unlock()
		return Errorf("invalid object handle \"%s\"", handleName)
	}
	info := i.ForeignRegistry.types[instance.typeName]
	delete(i.ForeignRegistry.instances, handleName)
	i.ForeignRegistry.mu.Unlock()

	if info != nil && info.destroy.IsValid() {
		info.destroy.Call([]reflect.Value{reflect.ValueOf(instance.value)})
	}
	if instance.obj != nil {
		_ = instance.obj.String() // pin the handle text before dropping the rep
		instance.obj.intrep = nil
	}
	i.UnregisterCommand(handleName)
	return OK("")
}

// GetForeignMethods returns the method names for a foreign type, sorted.
func (i *Interp) GetForeignMethods(typeName string) []string {
	if i.ForeignRegistry == nil {
		return nil
	}
	i.ForeignRegistry.mu.RLock()
	defer i.ForeignRegistry.mu.RUnlock()

	info, ok := i.ForeignRegistry.types[typeName]
	if !ok {
		return nil
	}
	methods := make([]string, 0, len(info.methods)+1)
	for name := range info.methods {
		methods = append(methods, name)
	}
	methods = append(methods, "destroy")
	sort.Strings(methods)
	return methods
}
