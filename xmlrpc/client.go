package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Fault is returned by Call when the remote side answered with an
// XML-RPC fault.
type Fault struct {
	Code   int32
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault: code=%d string=%s", f.Code, f.String)
}

// Client calls remote XML-RPC methods over HTTP.
type Client struct {
	HTTPClient *http.Client
}

// DefaultClient is used by Call.
var DefaultClient = NewClient(10 * time.Second)

// NewClient returns a client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{HTTPClient: &http.Client{Timeout: timeout}}
}

// Call invokes method on the server at url using DefaultClient.
func Call(url string, method string, args ...interface{}) (interface{}, error) {
	return DefaultClient.Call(url, method, args...)
}

// Call invokes method on the server at url and returns the decoded result.
func (c *Client) Call(url string, method string, args ...interface{}) (interface{}, error) {
	var buffer bytes.Buffer
	if err := emitRequest(&buffer, method, args...); err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	r, err := c.HTTPClient.Post(url, "text/xml", &buffer)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s", method)
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: HTTP status %s", method, r.Status)
	}

	ok, result, err := parseResponse(xml.NewDecoder(r.Body))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s response", method)
	}
	if ok {
		return result, nil
	}

	m, isMap := result.(map[string]interface{})
	if !isMap {
		return nil, errors.New("malformed fault response")
	}
	code, codeOK := m["faultCode"].(int32)
	message, messageOK := m["faultString"].(string)
	if !codeOK || !messageOK {
		return nil, errors.New("malformed fault response")
	}
	return nil, &Fault{Code: code, String: message}
}
