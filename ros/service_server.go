package ros

import (
	"bytes"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const serviceHandlerTimeout = 5 * time.Second

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// validateServiceHandler checks that handler is func(*Srv) error for the
// service type.
func validateServiceHandler(handler interface{}, srvType ServiceType) (reflect.Value, error) {
	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		return fn, errors.Errorf("service handler must be a function, got %T", handler)
	}
	ft := fn.Type()
	srvGoType := reflect.TypeOf(srvType.NewService())
	if ft.NumIn() != 1 || !srvGoType.AssignableTo(ft.In(0)) {
		return fn, errors.Errorf("service handler must take a single %v", srvGoType)
	}
	if ft.NumOut() != 1 || ft.Out(0) != errorType {
		return fn, errors.New("service handler must return error")
	}
	return fn, nil
}

type defaultServiceServer struct {
	node     *defaultNode
	logger   Logger
	service  string
	srvType  ServiceType
	handler  reflect.Value
	listener net.Listener
	quitChan chan struct{}
	stopOnce sync.Once
	sessions sync.WaitGroup
}

func newDefaultServiceServer(node *defaultNode, service string, srvType ServiceType, handler reflect.Value) (*defaultServiceServer, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(node.listenIP, "0"))
	if err != nil {
		return nil, errors.Wrapf(err, "listen for service %s", service)
	}
	server := &defaultServiceServer{
		node:     node,
		logger:   node.logger,
		service:  service,
		srvType:  srvType,
		handler:  handler,
		listener: listener,
		quitChan: make(chan struct{}),
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return nil, err
	}
	address := fmt.Sprintf("rosrpc://%s:%s", node.hostname, port)
	_, err = callRosAPI(node.masterURI, "registerService", node.qualifiedName, service, address, node.xmlrpcURI)
	if err != nil {
		listener.Close()
		return nil, errors.Wrapf(err, "register service %s", service)
	}
	server.logger.Debugf("service %s listening on %s", service, address)
	return server, nil
}

func (s *defaultServiceServer) start(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quitChan:
			default:
				s.logger.Errorf("accept on service %s: %v", s.service, err)
			}
			break
		}
		s.sessions.Add(1)
		go s.serve(conn)
	}

	_, err := callRosAPI(s.node.masterURI, "unregisterService", s.node.qualifiedName, s.service, s.node.xmlrpcURI)
	if err != nil {
		s.logger.Warnf("unregisterService %s: %v", s.service, err)
	}
	s.sessions.Wait()
}

func (s *defaultServiceServer) Shutdown() {
	s.stop()
	s.node.forgetServer(s)
}

func (s *defaultServiceServer) stop() {
	s.stopOnce.Do(func() {
		close(s.quitChan)
		s.listener.Close()
	})
}

// serve handles one client connection: a probe, a single call, or a
// sequence of calls when the client asks for a persistent connection.
func (s *defaultServiceServer) serve(conn net.Conn) {
	defer s.sessions.Done()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.quitChan:
		case <-done:
		}
		conn.Close()
	}()

	logger := s.logger
	conn.SetDeadline(time.Now().Add(serviceCallTimeout))
	reqHeaders, err := readConnectionHeader(conn)
	if err != nil {
		logger.Errorf("service %s: read connection header: %v", s.service, err)
		return
	}
	reqHeader := headerMap(reqHeaders)

	md5sum := s.srvType.MD5Sum()
	if m := reqHeader["md5sum"]; m != md5sum && m != "*" && reqHeader["probe"] != "1" {
		msg := fmt.Sprintf("request from [%s]: md5sums do not match: [%s] vs. [%s]", reqHeader["callerid"], m, md5sum)
		writeConnectionHeader([]header{{"error", msg}}, conn)
		logger.Warnf("service %s: %s", s.service, msg)
		return
	}
	resHeaders := []header{
		{"callerid", s.node.qualifiedName},
		{"md5sum", md5sum},
		{"request_type", s.srvType.RequestType().Name()},
		{"response_type", s.srvType.ResponseType().Name()},
		{"type", s.srvType.Name()},
	}
	if err := writeConnectionHeader(resHeaders, conn); err != nil {
		logger.Errorf("service %s: write response header: %v", s.service, err)
		return
	}
	if reqHeader["probe"] == "1" {
		return
	}

	persistent := reqHeader["persistent"] == "1"
	for {
		if !persistent {
			conn.SetDeadline(time.Now().Add(serviceCallTimeout))
		} else {
			conn.SetDeadline(time.Time{})
		}
		request, err := readFrame(conn)
		if err != nil {
			if !persistent {
				logger.Errorf("service %s: read request: %v", s.service, err)
			}
			return
		}
		response, callErr := s.call(request)
		conn.SetDeadline(time.Now().Add(serviceCallTimeout))
		if callErr != nil {
			logger.Warnf("service %s: %v", s.service, callErr)
			conn.Write([]byte{0})
			err = writeFrame(conn, []byte(callErr.Error()))
		} else {
			conn.Write([]byte{1})
			err = writeFrame(conn, response)
		}
		if err != nil || !persistent {
			return
		}
	}
}

type serviceResult struct {
	response []byte
	err      error
}

// call runs the handler on the spinning goroutine and waits for it.
func (s *defaultServiceServer) call(request []byte) ([]byte, error) {
	resultChan := make(chan serviceResult, 1)
	job := func() {
		srv := s.srvType.NewService()
		if err := srv.ReqMessage().Deserialize(bytes.NewReader(request)); err != nil {
			resultChan <- serviceResult{err: errors.Wrap(err, "deserialize request")}
			return
		}
		results := s.handler.Call([]reflect.Value{reflect.ValueOf(srv)})
		if err, _ := results[0].Interface().(error); err != nil {
			resultChan <- serviceResult{err: err}
			return
		}
		response, err := serializeMessage(srv.ResMessage())
		resultChan <- serviceResult{response, err}
	}

	timeout := time.NewTimer(serviceHandlerTimeout)
	defer timeout.Stop()
	select {
	case s.node.jobChan <- job:
	case <-s.quitChan:
		return nil, ErrNotOK
	case <-timeout.C:
		return nil, errors.New("service callback timeout")
	}
	select {
	case result := <-resultChan:
		return result.response, result.err
	case <-s.quitChan:
		return nil, ErrNotOK
	case <-timeout.C:
		return nil, errors.New("service callback timeout")
	}
}
