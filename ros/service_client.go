package ros

import (
	"bytes"
	"io"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const serviceCallTimeout = 5 * time.Second

// ServiceError is the error string a service server returned for a call.
type ServiceError struct {
	Service string
	Message string
}

func (e *ServiceError) Error() string {
	return "service " + e.Service + " failed: " + e.Message
}

type defaultServiceClient struct {
	node    *defaultNode
	logger  Logger
	service string
	srvType ServiceType
	closed  atomic.Bool
}

func newDefaultServiceClient(node *defaultNode, service string, srvType ServiceType) *defaultServiceClient {
	return &defaultServiceClient{
		node:    node,
		logger:  node.logger,
		service: service,
		srvType: srvType,
	}
}

func (c *defaultServiceClient) lookupService() (string, error) {
	result, err := callRosAPI(c.node.masterURI, "lookupService", c.node.qualifiedName, c.service)
	if err != nil {
		return "", err
	}
	rawURL, ok := result.(string)
	if !ok {
		return "", errors.Errorf("lookupService %s: result is not a string", c.service)
	}
	serviceURL, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "lookupService %s", c.service)
	}
	return serviceURL.Host, nil
}

// Call looks the service up, sends the request and fills the response of
// srv. Calls keep working after a shutdown request until the node or the
// client is shut down.
func (c *defaultServiceClient) Call(srv Service) error {
	if c.closed.Load() || c.node.closed.Load() {
		return ErrNotOK
	}
	address, err := c.lookupService()
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", address, serviceCallTimeout)
	if err != nil {
		return errors.Wrapf(err, "connect to service %s", c.service)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(serviceCallTimeout))

	md5sum := c.srvType.MD5Sum()
	headers := []header{
		{"service", c.service},
		{"md5sum", md5sum},
		{"type", c.srvType.Name()},
		{"callerid", c.node.qualifiedName},
	}
	if err := writeConnectionHeader(headers, conn); err != nil {
		return errors.Wrap(err, "write connection header")
	}
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		return errors.Wrap(err, "read response header")
	}
	resHeader := headerMap(resHeaders)
	if msg, ok := resHeader["error"]; ok {
		return &ServiceError{c.service, msg}
	}
	if resHeader["md5sum"] != md5sum {
		return errors.Errorf("service %s: md5sum mismatch %s vs %s", c.service, resHeader["md5sum"], md5sum)
	}

	request, err := serializeMessage(srv.ReqMessage())
	if err != nil {
		return errors.Wrap(err, "serialize request")
	}
	if err := writeFrame(conn, request); err != nil {
		return errors.Wrap(err, "write request")
	}

	okByte := make([]byte, 1)
	if _, err := io.ReadFull(conn, okByte); err != nil {
		return errors.Wrap(err, "read status")
	}
	payload, err := readFrame(conn)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if okByte[0] != 1 {
		return &ServiceError{c.service, string(payload)}
	}
	return srv.ResMessage().Deserialize(bytes.NewReader(payload))
}

// Shutdown makes every later Call fail with ErrNotOK.
func (c *defaultServiceClient) Shutdown() {
	c.closed.Store(true)
}
