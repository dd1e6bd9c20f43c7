package ros

import (
	"container/list"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const (
	publisherQueueSize    = 100
	publisherWriteTimeout = time.Second
)

type defaultPublisher struct {
	node           *defaultNode
	logger         Logger
	topic          string
	msgType        MessageType
	msgChan        chan []byte
	sessionChan    chan *remoteSubscriberSession
	sessionEndChan chan *remoteSubscriberSession
	quitChan       chan struct{}
	stopOnce       sync.Once
	sessions       *list.List
	listener       net.Listener
	numSubscribers int32
}

func newDefaultPublisher(node *defaultNode, topic string, msgType MessageType) (*defaultPublisher, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(node.listenIP, "0"))
	if err != nil {
		return nil, errors.Wrapf(err, "listen for subscribers of %s", topic)
	}
	return &defaultPublisher{
		node:           node,
		logger:         node.logger,
		topic:          topic,
		msgType:        msgType,
		msgChan:        make(chan []byte, 10),
		sessionChan:    make(chan *remoteSubscriberSession, 10),
		sessionEndChan: make(chan *remoteSubscriberSession, 10),
		quitChan:       make(chan struct{}),
		sessions:       list.New(),
		listener:       listener,
	}, nil
}

func (pub *defaultPublisher) start(wg *sync.WaitGroup) {
	defer wg.Done()
	logger := pub.logger
	logger.Debugf("publisher goroutine for %s started", pub.topic)

	var acceptWG sync.WaitGroup
	acceptWG.Add(1)
	go pub.listenRemoteSubscriber(&acceptWG)

	for {
		select {
		case msg := <-pub.msgChan:
			for e := pub.sessions.Front(); e != nil; e = e.Next() {
				e.Value.(*remoteSubscriberSession).enqueue(msg)
			}
		case s := <-pub.sessionChan:
			pub.sessions.PushBack(s)
			go s.start()
		case s := <-pub.sessionEndChan:
			for e := pub.sessions.Front(); e != nil; e = e.Next() {
				if e.Value == s {
					pub.sessions.Remove(e)
					break
				}
			}
		case <-pub.quitChan:
			pub.listener.Close()
			acceptWG.Wait()
			_, err := callRosAPI(pub.node.masterURI, "unregisterPublisher", pub.node.qualifiedName, pub.topic, pub.node.xmlrpcURI)
			if err != nil {
				logger.Warnf("unregisterPublisher %s: %v", pub.topic, err)
			}
			for e := pub.sessions.Front(); e != nil; e = e.Next() {
				e.Value.(*remoteSubscriberSession).stop()
			}
			pub.sessions.Init()
			logger.Debugf("publisher goroutine for %s exited", pub.topic)
			return
		}
	}
}

func (pub *defaultPublisher) listenRemoteSubscriber(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		conn, err := pub.listener.Accept()
		if err != nil {
			select {
			case <-pub.quitChan:
			default:
				pub.logger.Errorf("accept on %s: %v", pub.topic, err)
			}
			return
		}
		pub.logger.Debugf("%s: subscriber connected from %s", pub.topic, conn.RemoteAddr())
		select {
		case pub.sessionChan <- newRemoteSubscriberSession(pub, conn):
		case <-pub.quitChan:
			conn.Close()
			return
		}
	}
}

func (pub *defaultPublisher) Publish(msg Message) error {
	data, err := serializeMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "serialize %s", pub.msgType.Name())
	}
	select {
	case <-pub.quitChan:
		return ErrNotOK
	default:
	}
	select {
	case pub.msgChan <- data:
		return nil
	case <-pub.quitChan:
		return ErrNotOK
	}
}

func (pub *defaultPublisher) GetNumSubscribers() int {
	return int(atomic.LoadInt32(&pub.numSubscribers))
}

func (pub *defaultPublisher) Shutdown() {
	pub.stop()
	pub.node.forgetPublisher(pub)
}

func (pub *defaultPublisher) stop() {
	pub.stopOnce.Do(func() { close(pub.quitChan) })
}

func (pub *defaultPublisher) hostAndPort() (string, int, error) {
	_, portStr, err := net.SplitHostPort(pub.listener.Addr().String())
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return pub.node.hostname, port, nil
}

// remoteSubscriberSession streams messages to one TCPROS subscriber.
type remoteSubscriberSession struct {
	pub      *defaultPublisher
	conn     net.Conn
	msgChan  chan []byte
	quitChan chan struct{}
	stopOnce sync.Once
}

func newRemoteSubscriberSession(pub *defaultPublisher, conn net.Conn) *remoteSubscriberSession {
	return &remoteSubscriberSession{
		pub:      pub,
		conn:     conn,
		msgChan:  make(chan []byte, publisherQueueSize),
		quitChan: make(chan struct{}),
	}
}

// enqueue never blocks; a full queue drops its oldest message.
func (session *remoteSubscriberSession) enqueue(msg []byte) {
	for {
		select {
		case session.msgChan <- msg:
			return
		default:
		}
		select {
		case <-session.msgChan:
		default:
		}
	}
}

func (session *remoteSubscriberSession) stop() {
	session.stopOnce.Do(func() {
		close(session.quitChan)
		session.conn.Close()
	})
}

func (session *remoteSubscriberSession) start() {
	pub := session.pub
	logger := pub.logger
	defer func() {
		session.stop()
		select {
		case pub.sessionEndChan <- session:
		case <-pub.quitChan:
		}
	}()

	if err := session.handshake(); err != nil {
		logger.Errorf("%s: handshake with %s failed: %v", pub.topic, session.conn.RemoteAddr(), err)
		return
	}
	atomic.AddInt32(&pub.numSubscribers, 1)
	defer atomic.AddInt32(&pub.numSubscribers, -1)

	for {
		select {
		case <-session.quitChan:
			return
		case msg := <-session.msgChan:
			session.conn.SetWriteDeadline(time.Now().Add(publisherWriteTimeout))
			if err := writeFrame(session.conn, msg); err != nil {
				select {
				case <-session.quitChan:
				default:
					logger.Errorf("%s: dropping subscriber %s: %v", pub.topic, session.conn.RemoteAddr(), err)
				}
				return
			}
		}
	}
}

func (session *remoteSubscriberSession) handshake() error {
	pub := session.pub
	session.conn.SetDeadline(time.Now().Add(publisherWriteTimeout))
	defer session.conn.SetDeadline(time.Time{})

	headers, err := readConnectionHeader(session.conn)
	if err != nil {
		return errors.Wrap(err, "read connection header")
	}
	reqHeader := headerMap(headers)
	for _, h := range headers {
		pub.logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}

	typeName := pub.msgType.Name()
	md5sum := pub.msgType.MD5Sum()
	var mismatch error
	if t := reqHeader["type"]; t != typeName && t != "*" {
		mismatch = errors.Errorf("message type mismatch: %s vs %s", typeName, t)
	} else if m := reqHeader["md5sum"]; m != md5sum && m != "*" {
		mismatch = errors.Errorf("md5sum mismatch for %s: %s vs %s", typeName, md5sum, m)
	}
	if mismatch != nil {
		writeConnectionHeader([]header{{"error", mismatch.Error()}}, session.conn)
		return mismatch
	}

	resHeaders := []header{
		{"message_definition", pub.msgType.Text()},
		{"callerid", pub.node.qualifiedName},
		{"latching", "0"},
		{"md5sum", md5sum},
		{"topic", pub.topic},
		{"type", typeName},
	}
	return writeConnectionHeader(resHeaders, session.conn)
}
