package ros

import (
	"bytes"
	"fmt"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

var messageEventType = reflect.TypeOf(MessageEvent{})

type messageEvent struct {
	bytes []byte
	event MessageEvent
}

// validateCallback checks that callback can receive messages of msgType.
func validateCallback(callback interface{}, msgType MessageType) (reflect.Value, error) {
	fn := reflect.ValueOf(callback)
	if fn.Kind() != reflect.Func {
		return fn, errors.Errorf("callback must be a function, got %T", callback)
	}
	ft := fn.Type()
	if ft.NumIn() > 2 {
		return fn, errors.Errorf("callback takes at most 2 arguments, got %d", ft.NumIn())
	}
	msgGoType := reflect.TypeOf(msgType.NewMessage())
	if ft.NumIn() >= 1 && !msgGoType.AssignableTo(ft.In(0)) {
		return fn, errors.Errorf("callback argument %v cannot receive %v", ft.In(0), msgGoType)
	}
	if ft.NumIn() == 2 && ft.In(1) != messageEventType {
		return fn, errors.Errorf("second callback argument must be ros.MessageEvent, got %v", ft.In(1))
	}
	return fn, nil
}

// publisherConn is one TCPROS connection to a remote publisher.
type publisherConn struct {
	uri      string
	quitChan chan struct{}
}

// defaultSubscriber runs its bookkeeping in its own goroutine (start).
// Only callbacks and numPublishers are shared with other goroutines.
type defaultSubscriber struct {
	node             *defaultNode
	logger           Logger
	topic            string
	msgType          MessageType
	callbacksMutex   sync.Mutex
	callbacks        []reflect.Value
	pubListChan      chan []string
	msgChan          chan messageEvent
	disconnectedChan chan *publisherConn
	quitChan         chan struct{}
	stopOnce         sync.Once
	connections      map[string]*publisherConn
	numPublishers    int32
}

func newDefaultSubscriber(node *defaultNode, topic string, msgType MessageType, callback reflect.Value) *defaultSubscriber {
	return &defaultSubscriber{
		node:             node,
		logger:           node.logger,
		topic:            topic,
		msgType:          msgType,
		callbacks:        []reflect.Value{callback},
		pubListChan:      make(chan []string, 10),
		msgChan:          make(chan messageEvent, 10),
		disconnectedChan: make(chan *publisherConn, 10),
		quitChan:         make(chan struct{}),
		connections:      make(map[string]*publisherConn),
	}
}

func (sub *defaultSubscriber) addCallback(callback reflect.Value) {
	sub.callbacksMutex.Lock()
	sub.callbacks = append(sub.callbacks, callback)
	sub.callbacksMutex.Unlock()
}

// updatePublishers hands a new publisher list to the subscriber goroutine.
func (sub *defaultSubscriber) updatePublishers(uris []string) {
	select {
	case sub.pubListChan <- uris:
	case <-sub.quitChan:
	}
}

func (sub *defaultSubscriber) start(wg *sync.WaitGroup) {
	defer wg.Done()
	logger := sub.logger
	logger.Debugf("subscriber goroutine for %s started", sub.topic)

	var connWG sync.WaitGroup
	defer connWG.Wait()
	for {
		select {
		case list := <-sub.pubListChan:
			current := make(map[string]bool, len(list))
			for _, uri := range list {
				current[uri] = true
			}
			for uri, conn := range sub.connections {
				if !current[uri] {
					close(conn.quitChan)
					delete(sub.connections, uri)
				}
			}
			for uri := range current {
				if _, ok := sub.connections[uri]; ok {
					continue
				}
				conn := &publisherConn{uri: uri, quitChan: make(chan struct{})}
				sub.connections[uri] = conn
				connWG.Add(1)
				go sub.startRemotePublisherConn(&connWG, conn)
			}
			atomic.StoreInt32(&sub.numPublishers, int32(len(sub.connections)))
		case conn := <-sub.disconnectedChan:
			if sub.connections[conn.uri] == conn {
				close(conn.quitChan)
				delete(sub.connections, conn.uri)
				atomic.StoreInt32(&sub.numPublishers, int32(len(sub.connections)))
			}
		case msgEvent := <-sub.msgChan:
			job := sub.callbackJob(msgEvent)
			select {
			case sub.node.jobChan <- job:
			case <-sub.quitChan:
				sub.shutdownConnections()
				return
			}
		case <-sub.quitChan:
			sub.shutdownConnections()
			return
		}
	}
}

func (sub *defaultSubscriber) shutdownConnections() {
	for uri, conn := range sub.connections {
		close(conn.quitChan)
		delete(sub.connections, uri)
	}
	atomic.StoreInt32(&sub.numPublishers, 0)
	_, err := callRosAPI(sub.node.masterURI, "unregisterSubscriber", sub.node.qualifiedName, sub.topic, sub.node.xmlrpcURI)
	if err != nil {
		sub.logger.Warnf("unregisterSubscriber %s: %v", sub.topic, err)
	}
}

// callbackJob deserializes on the spinning goroutine and invokes every
// callback registered at that time.
func (sub *defaultSubscriber) callbackJob(msgEvent messageEvent) func() {
	return func() {
		m := sub.msgType.NewMessage()
		if err := m.Deserialize(bytes.NewReader(msgEvent.bytes)); err != nil {
			sub.logger.Errorf("%s: %v", sub.topic, err)
			return
		}
		sub.callbacksMutex.Lock()
		callbacks := make([]reflect.Value, len(sub.callbacks))
		copy(callbacks, sub.callbacks)
		sub.callbacksMutex.Unlock()

		args := []reflect.Value{reflect.ValueOf(m), reflect.ValueOf(msgEvent.event)}
		for _, fn := range callbacks {
			fn.Call(args[:fn.Type().NumIn()])
		}
	}
}

func (sub *defaultSubscriber) startRemotePublisherConn(wg *sync.WaitGroup, pc *publisherConn) {
	defer wg.Done()
	logger := sub.logger

	err := sub.readRemotePublisher(pc)
	select {
	case <-pc.quitChan:
		return
	default:
	}
	if err != nil {
		logger.Errorf("%s: connection to %s: %v", sub.topic, pc.uri, err)
	}
	select {
	case sub.disconnectedChan <- pc:
	case <-sub.quitChan:
	}
}

func (sub *defaultSubscriber) readRemotePublisher(pc *publisherConn) error {
	protocols := []interface{}{[]interface{}{"TCPROS"}}
	result, err := callRosAPI(pc.uri, "requestTopic", sub.node.qualifiedName, sub.topic, protocols)
	if err != nil {
		return err
	}
	params, ok := result.([]interface{})
	if !ok || len(params) < 3 {
		return errors.Errorf("publisher offered no usable protocol: %v", result)
	}
	name, _ := params[0].(string)
	host, _ := params[1].(string)
	port, _ := params[2].(int32)
	if name != "TCPROS" {
		return errors.Errorf("unsupported protocol %q", name)
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprint(port)), 10*time.Second)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-pc.quitChan:
		case <-done:
		}
		conn.Close()
	}()

	headers := []header{
		{"topic", sub.topic},
		{"md5sum", sub.msgType.MD5Sum()},
		{"type", sub.msgType.Name()},
		{"callerid", sub.node.qualifiedName},
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
		return errors.Errorf("publisher refused connection: %s", msg)
	}
	if resHeader["type"] != sub.msgType.Name() || resHeader["md5sum"] != sub.msgType.MD5Sum() {
		return errors.Errorf("incompatible message type %s/%s, expected %s/%s",
			resHeader["type"], resHeader["md5sum"], sub.msgType.Name(), sub.msgType.MD5Sum())
	}

	event := MessageEvent{
		PublisherName:    resHeader["callerid"],
		ConnectionHeader: resHeader,
	}
	for {
		payload, err := readFrame(conn)
		if err != nil {
			return err
		}
		event.ReceiptTime = time.Now()
		select {
		case sub.msgChan <- messageEvent{bytes: payload, event: event}:
		case <-pc.quitChan:
			return nil
		}
	}
}

func (sub *defaultSubscriber) GetNumPublishers() int {
	return int(atomic.LoadInt32(&sub.numPublishers))
}

func (sub *defaultSubscriber) Shutdown() {
	sub.stop()
	sub.node.forgetSubscriber(sub)
}

func (sub *defaultSubscriber) stop() {
	sub.stopOnce.Do(func() { close(sub.quitChan) })
}
