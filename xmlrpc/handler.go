package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"sync"
)

// Method is a function taking decoded XML-RPC arguments and returning
// (interface{}, error).
type Method interface{}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Handler serves XML-RPC requests by dispatching to registered methods.
type Handler struct {
	mapping map[string]Method
	wait    sync.WaitGroup
}

func NewHandler(mapping map[string]Method) *Handler {
	return &Handler{mapping: mapping}
}

// WaitForShutdown blocks until every in-flight request has been answered.
func (h *Handler) WaitForShutdown() {
	h.wait.Wait()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.wait.Add(1)
	defer h.wait.Done()

	var buffer bytes.Buffer
	name, args, err := parseRequest(xml.NewDecoder(req.Body))
	if err != nil {
		emitFault(&buffer, 1, "Invalid request.")
		writeBuffer(w, &buffer)
		return
	}

	result, err := h.dispatch(name, args)
	if err != nil {
		emitFault(&buffer, 1, err.Error())
		writeBuffer(w, &buffer)
		return
	}

	if err := emitResponse(&buffer, result); err != nil {
		buffer.Reset()
		emitFault(&buffer, 1, fmt.Sprintf("Method '%v' returned an invalid result type.", name))
	}
	writeBuffer(w, &buffer)
}

func (h *Handler) dispatch(name string, args []interface{}) (interface{}, error) {
	method, ok := h.mapping[name]
	if !ok {
		return nil, fmt.Errorf("No method named '%v'.", name)
	}

	fn := reflect.ValueOf(method)
	ft := fn.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() != 2 || !ft.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("Method '%v' has an invalid signature.", name)
	}
	if ft.NumIn() != len(args) {
		return nil, fmt.Errorf("Method '%v' takes %d arguments, got %d.", name, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v := reflect.ValueOf(arg)
		switch {
		case !v.IsValid():
			v = reflect.Zero(ft.In(i))
		case !v.Type().AssignableTo(ft.In(i)):
			return nil, fmt.Errorf("Method '%v' argument %d: cannot use %v as %v.", name, i, v.Type(), ft.In(i))
		}
		in[i] = v
	}

	out := fn.Call(in)
	if errValue := out[1]; !errValue.IsNil() {
		return nil, fmt.Errorf("Method '%v' call failed: %v", name, errValue.Interface())
	}
	return out[0].Interface(), nil
}

func writeBuffer(w http.ResponseWriter, buffer *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	buffer.WriteTo(w)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
