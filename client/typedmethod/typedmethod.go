// Package typedmethod adapts a statically-typed Go handler —
// func(*Args, *Reply) error — into the dynamic Variable-based
// LocalMethod signature the client's local method table expects,
// for callers who would rather declare a Go struct than build a
// Variable tree by hand.
//
// Grounded on the teacher's server/service.go reflection-based method
// scanning (the same "Args and Reply both pointers, one error output"
// convention; a plain func has no receiver, so it takes exactly 2
// inputs), retargeted from net/rpc-style service
// registration to a single-handler adapter, with the Args/Reply
// marshaling done through codec/jsoncodec instead of the wire codec —
// this is the typed-method bridge the System Overview expansion calls
// for, not another wire format.
package typedmethod

import (
	"encoding/json"
	"fmt"
	"reflect"

	"binrpc/codec/jsoncodec"
	"binrpc/variable"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Handler is the Variable-world shape a typed method is adapted into.
type Handler func(args []*variable.Variable) *variable.Variable

// Adapt validates handler's signature against the
// func(*Args, *Reply) error convention and returns a Handler that
// bridges a single incoming Variable argument into Args, calls
// handler, and marshals Reply back into a Variable.
func Adapt(handler any) (Handler, error) {
	fn := reflect.ValueOf(handler)
	t := fn.Type()

	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("typedmethod: handler must be a function, got %s", t.Kind())
	}
	if t.NumIn() != 2 || t.NumOut() != 1 {
		return nil, fmt.Errorf("typedmethod: handler must have signature func(*Args, *Reply) error")
	}
	if t.In(0).Kind() != reflect.Ptr || t.In(1).Kind() != reflect.Ptr {
		return nil, fmt.Errorf("typedmethod: both Args and Reply must be pointer types")
	}
	if t.Out(0) != errorType {
		return nil, fmt.Errorf("typedmethod: handler's return value must be error")
	}

	argType := t.In(0).Elem()
	replyType := t.In(1).Elem()

	return func(args []*variable.Variable) *variable.Variable {
		argv := reflect.New(argType)
		if len(args) > 0 {
			if raw, err := jsoncodec.Marshal(args[0]); err == nil {
				_ = json.Unmarshal(raw, argv.Interface())
			}
		}
		replyv := reflect.New(replyType)

		results := fn.Call([]reflect.Value{argv, replyv})
		if errVal := results[0]; !errVal.IsNil() {
			return variable.NewFault(-32000, errVal.Interface().(error).Error())
		}

		raw, err := json.Marshal(replyv.Interface())
		if err != nil {
			return variable.NewFault(-32000, err.Error())
		}
		result, err := jsoncodec.Unmarshal(raw)
		if err != nil {
			return variable.NewFault(-32000, err.Error())
		}
		return result
	}, nil
}
