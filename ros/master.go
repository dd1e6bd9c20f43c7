package ros

import (
	"fmt"

	"github.com/mirte-robot/mirte-speed-control/xmlrpc"
	"github.com/pkg/errors"
)

const (
	APIStatusError   = -1
	APIStatusFailure = 0
	APIStatusSuccess = 1
)

// APIError is a ROS API reply whose status code is not success.
type APIError struct {
	Method  string
	Code    int32
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with code %d: %s", e.Method, e.Code, e.Message)
}

// callRosAPI calls method on a master or slave API at calleeURI and
// unpacks the [code, statusMessage, value] reply.
func callRosAPI(calleeURI string, method string, args ...interface{}) (interface{}, error) {
	result, err := xmlrpc.Call(calleeURI, method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", calleeURI, method)
	}

	xs, ok := result.([]interface{})
	if !ok {
		return nil, errors.Errorf("malformed ROS API result of %s", method)
	}
	if len(xs) != 3 {
		return nil, errors.Errorf("malformed ROS API result of %s: length must be 3 but %d", method, len(xs))
	}
	code, ok := xs[0].(int32)
	if !ok {
		return nil, errors.Errorf("status code of %s is not int", method)
	}
	message, ok := xs[1].(string)
	if !ok {
		return nil, errors.Errorf("status message of %s is not string", method)
	}
	if code != APIStatusSuccess {
		return nil, &APIError{Method: method, Code: code, Message: message}
	}
	return xs[2], nil
}

func buildRosAPIResult(code int32, message string, value interface{}) interface{} {
	return []interface{}{code, message, value}
}
