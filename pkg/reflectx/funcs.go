package reflectx

import (
	"reflect"
	"runtime"
	"strings"
)

func IsFunction(fn any) bool {
	if fn == nil {
		return false
	}

	ftpe := reflect.TypeOf(fn)
	isFunc := ftpe.Kind() == reflect.Func

	return isFunc
}

// FunctionName resolves the declared name of a handler function. Method
// values ("a.CreateWelcomeTask") and method expressions both come back as the
// bare method name, free functions as the function name, and closures as the
// compiler-assigned funcN name. Non-functions yield "".
//
// The runtime name is used instead of the reflect type name on purpose:
// handlers are usually values of a named func type, and the type name would
// shadow the identity of the actual function behind it.
func FunctionName(fn any) string {
	if !IsFunction(fn) {
		return ""
	}

	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return reflect.TypeOf(fn).String()
	}

	name := rf.Name()
	if lastDot := strings.LastIndex(name, "."); lastDot >= 0 {
		name = name[lastDot+1:]
	}
	// bound method values carry a -fm suffix
	return strings.TrimSuffix(name, "-fm")
}
