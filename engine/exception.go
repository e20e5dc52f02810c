package engine

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

const (
	classTypeName    = "exception.class"
	instanceTypeName = "exception.instance"
)

// Class is a guest exception class. Classes form a single-inheritance tree
// rooted at BaseException.
type Class struct {
	Base *Class
	Name string
}

// Built-in exception classes.
var (
	BaseException     = &Class{Name: "BaseException"}
	SystemExit        = &Class{Name: "SystemExit", Base: BaseException}
	KeyboardInterrupt = &Class{Name: "KeyboardInterrupt", Base: BaseException}
	Exception         = &Class{Name: "Exception", Base: BaseException}
	RuntimeError      = &Class{Name: "RuntimeError", Base: Exception}
	ValueError        = &Class{Name: "ValueError", Base: Exception}
)

var builtinClasses = []*Class{
	BaseException,
	SystemExit,
	KeyboardInterrupt,
	Exception,
	RuntimeError,
	ValueError,
}

// IsSubclassOf reports whether c is base or derives from it.
func (c *Class) IsSubclassOf(base *Class) bool {
	for k := c; k != nil; k = k.Base {
		if k == base {
			return true
		}
	}
	return false
}

// Instance is a raised or raisable exception value.
type Instance struct {
	Class *Class
	Args  []lua.LValue
}

// Message renders the instance arguments the way tostring shows them.
func (i *Instance) Message() string {
	switch len(i.Args) {
	case 0:
		return ""
	case 1:
		return i.Args[0].String()
	}
	parts := make([]string, len(i.Args))
	for n, a := range i.Args {
		parts[n] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (i *Instance) String() string {
	msg := i.Message()
	if msg == "" {
		return i.Class.Name
	}
	return i.Class.Name + ": " + msg
}

// AsInstance returns the exception instance carried by a guest value.
func AsInstance(v lua.LValue) (*Instance, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	inst, ok := ud.Value.(*Instance)
	return inst, ok
}

// installExceptions registers the class and instance metatables, the
// built-in classes as globals, and the exceptions helper table.
func (e *Engine) installExceptions() {
	L := e.L

	classMT := L.NewTypeMetatable(classTypeName)
	L.SetField(classMT, "__call", L.NewFunction(e.classCall))
	L.SetField(classMT, "__tostring", L.NewFunction(classToString))
	L.SetField(classMT, "__index", L.NewFunction(e.classIndex))

	instMT := L.NewTypeMetatable(instanceTypeName)
	L.SetField(instMT, "__tostring", L.NewFunction(instanceToString))
	L.SetField(instMT, "__index", L.NewFunction(e.instanceIndex))

	for _, c := range builtinClasses {
		L.SetGlobal(c.Name, e.classValue(c))
	}

	helpers := L.NewTable()
	L.SetFuncs(helpers, map[string]lua.LGFunction{
		"subclass":   e.subclass,
		"isinstance": e.isInstance,
	})
	L.SetGlobal("exceptions", helpers)
}

// classValue returns the unique guest value of c.
func (e *Engine) classValue(c *Class) *lua.LUserData {
	if ud, ok := e.classes[c]; ok {
		return ud
	}
	ud := e.L.NewUserData()
	ud.Value = c
	e.L.SetMetatable(ud, e.L.GetTypeMetatable(classTypeName))
	e.classes[c] = ud
	return ud
}

// instanceValue wraps inst as a guest value.
func (e *Engine) instanceValue(inst *Instance) *lua.LUserData {
	ud := e.L.NewUserData()
	ud.Value = inst
	e.L.SetMetatable(ud, e.L.GetTypeMetatable(instanceTypeName))
	return ud
}

func checkClass(L *lua.LState, n int) *Class {
	ud := L.CheckUserData(n)
	c, ok := ud.Value.(*Class)
	if !ok {
		L.ArgError(n, "exception class expected")
	}
	return c
}

// classCall constructs an instance: SystemExit(3).
func (e *Engine) classCall(L *lua.LState) int {
	c := checkClass(L, 1)
	top := L.GetTop()
	args := make([]lua.LValue, 0, top-1)
	for i := 2; i <= top; i++ {
		args = append(args, L.Get(i))
	}
	L.Push(e.instanceValue(&Instance{Class: c, Args: args}))
	return 1
}

func classToString(L *lua.LState) int {
	c := checkClass(L, 1)
	L.Push(lua.LString("<class '" + c.Name + "'>"))
	return 1
}

func (e *Engine) classIndex(L *lua.LState) int {
	c := checkClass(L, 1)
	switch L.CheckString(2) {
	case "name":
		L.Push(lua.LString(c.Name))
	case "base":
		if c.Base == nil {
			L.Push(lua.LNil)
		} else {
			L.Push(e.classValue(c.Base))
		}
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func checkInstance(L *lua.LState, n int) *Instance {
	inst, ok := AsInstance(L.Get(n))
	if !ok {
		L.ArgError(n, "exception expected")
	}
	return inst
}

func instanceToString(L *lua.LState) int {
	L.Push(lua.LString(checkInstance(L, 1).String()))
	return 1
}

func (e *Engine) instanceIndex(L *lua.LState) int {
	inst := checkInstance(L, 1)
	switch L.CheckString(2) {
	case "class":
		L.Push(e.classValue(inst.Class))
	case "args":
		t := L.CreateTable(len(inst.Args), 0)
		for _, a := range inst.Args {
			t.Append(a)
		}
		L.Push(t)
	case "message":
		L.Push(lua.LString(inst.Message()))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// subclass creates a new class: exceptions.subclass(SystemExit, "AppExit").
func (e *Engine) subclass(L *lua.LState) int {
	base := checkClass(L, 1)
	name := L.CheckString(2)
	L.Push(e.classValue(&Class{Name: name, Base: base}))
	return 1
}

// isInstance tests a value against a class: exceptions.isinstance(err, Exception).
func (e *Engine) isInstance(L *lua.LState) int {
	c := checkClass(L, 2)
	inst, ok := AsInstance(L.Get(1))
	L.Push(lua.LBool(ok && inst.Class.IsSubclassOf(c)))
	return 1
}
