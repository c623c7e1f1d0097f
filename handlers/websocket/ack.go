package websocket

import (
	"reflect"

	socketio "github.com/zishang520/socket.io/v2/socket"
)

// ackInvoker delivers a response payload to a client-supplied callback.
type ackInvoker func(payload map[string]any)

// extractAck splits a trailing callback function off the event arguments,
// when the client supplied one.
func extractAck(datas []any) (ack ackInvoker, args []any) {
	if len(datas) == 0 {
		return nil, datas
	}

	candidate := datas[len(datas)-1]
	ack = wrapAck(candidate)
	if ack == nil {
		return nil, datas
	}
	return ack, datas[:len(datas)-1]
}

// wrapAck adapts an arbitrary callback value into an ackInvoker. The
// payload goes into the first parameter the callback can hold; remaining
// parameters are zeroed. Non-function values yield nil.
func wrapAck(candidate any) ackInvoker {
	if candidate == nil {
		return nil
	}

	value := reflect.ValueOf(candidate)
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil
	}

	typ := value.Type()
	return func(payload map[string]any) {
		args := make([]reflect.Value, typ.NumIn())
		for i := range args {
			if i == 0 {
				args[i] = coerceValue(payload, typ.In(i))
			} else {
				args[i] = reflect.Zero(typ.In(i))
			}
		}
		value.Call(args)
	}
}

func coerceValue(payload map[string]any, targetType reflect.Type) reflect.Value {
	rv := reflect.ValueOf(payload)
	if rv.Type().AssignableTo(targetType) {
		return rv
	}
	if targetType.Kind() == reflect.Interface && targetType.NumMethod() == 0 {
		return rv
	}
	return reflect.Zero(targetType)
}

// respond delivers a structured result: through the ack when the client
// asked for one, as a direct result event otherwise.
func respond(socket *socketio.Socket, ack ackInvoker, payload map[string]any) {
	if ack != nil {
		ack(payload)
		return
	}
	_ = socket.Emit("result", payload)
}
