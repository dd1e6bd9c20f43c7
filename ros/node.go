package ros

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mirte-robot/mirte-speed-control/xmlrpc"
	"github.com/pkg/errors"
)

// defaultNode implements Node. Callbacks of subscribers, services and
// timers are queued on jobChan and run by whoever spins the node.
type defaultNode struct {
	name          string
	namespace     string
	qualifiedName string
	masterURI     string
	xmlrpcURI     string
	hostname      string
	listenIP      string
	homeDir       string
	logDir        string
	nameResolver  *NameResolver
	nonRosArgs    []string
	logger        Logger

	xmlrpcListener net.Listener
	xmlrpcHandler  *xmlrpc.Handler
	httpServer     *http.Server

	mutex       sync.Mutex
	publishers  map[string]*defaultPublisher
	subscribers map[string]*defaultSubscriber
	servers     map[string]*defaultServiceServer
	timers      []*defaultTimer

	jobChan      chan func()
	done         chan struct{}
	doneOnce     sync.Once
	shutdownOnce sync.Once
	closed       atomic.Bool
	waitGroup    sync.WaitGroup
}

func newDefaultNode(name string, args []string) (*defaultNode, error) {
	namespace, nodeName, err := qualifyNodeName(name)
	if err != nil {
		return nil, err
	}
	remapping, params, specials, rest := processArguments(args)
	environment, err := loadEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "ROS environment")
	}

	node := &defaultNode{
		name:        nodeName,
		namespace:   namespace,
		masterURI:   environment.MasterURI,
		homeDir:     environment.Home,
		logDir:      environment.LogDir,
		nonRosArgs:  rest,
		logger:      DefaultLogger(),
		publishers:  make(map[string]*defaultPublisher),
		subscribers: make(map[string]*defaultSubscriber),
		servers:     make(map[string]*defaultServiceServer),
		jobChan:     make(chan func(), 100),
		done:        make(chan struct{}),
	}
	if value, ok := specials["__name"]; ok {
		node.name = value
	}
	if environment.Namespace != "" {
		node.namespace = environment.Namespace
	}
	if value, ok := specials["__ns"]; ok {
		node.namespace = value
	}
	if value, ok := specials["__log"]; ok {
		node.logDir = value
	}
	if value, ok := specials["__master"]; ok {
		node.masterURI = value
	}

	var onlyLocalhost bool
	node.hostname, onlyLocalhost = environment.determineHost()
	if value, ok := specials["__hostname"]; ok {
		node.hostname, onlyLocalhost = value, value == "localhost"
	} else if value, ok := specials["__ip"]; ok {
		node.hostname, onlyLocalhost = value, isLoopback(value)
	}
	if onlyLocalhost {
		node.listenIP = "127.0.0.1"
	} else {
		node.listenIP = "0.0.0.0"
	}

	node.nameResolver = newNameResolver(node.namespace, node.name, remapping)
	node.namespace = node.nameResolver.namespace
	node.qualifiedName = node.nameResolver.qualifiedNodeName()
	node.logger.Debugf("%s: master %s, log dir %s", node.qualifiedName, node.masterURI, node.logDir)

	if err := node.startSlaveAPI(); err != nil {
		return nil, err
	}

	for key, value := range params {
		if err := node.SetParam(PrivateNS+key, parseParamValue(value)); err != nil {
			node.Shutdown()
			return nil, errors.Wrapf(err, "set parameter ~%s", key)
		}
	}

	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(interruptChan)
		select {
		case sig := <-interruptChan:
			node.logger.Infof("%s: received %v", node.qualifiedName, sig)
			node.markDone()
		case <-node.done:
		}
	}()

	node.logger.Debugf("started %s", node.qualifiedName)
	return node, nil
}

func (node *defaultNode) startSlaveAPI() error {
	listener, err := net.Listen("tcp", net.JoinHostPort(node.listenIP, "0"))
	if err != nil {
		return errors.Wrap(err, "listen for slave API")
	}
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return err
	}
	node.xmlrpcURI = fmt.Sprintf("http://%s/", net.JoinHostPort(node.hostname, port))
	node.xmlrpcListener = listener

	m := map[string]xmlrpc.Method{
		"getBusStats":      func(callerID string) (interface{}, error) { return node.getBusStats(callerID) },
		"getBusInfo":       func(callerID string) (interface{}, error) { return node.getBusInfo(callerID) },
		"getMasterUri":     func(callerID string) (interface{}, error) { return node.getMasterURI(callerID) },
		"shutdown":         func(callerID string, msg string) (interface{}, error) { return node.shutdown(callerID, msg) },
		"getPid":           func(callerID string) (interface{}, error) { return node.getPid(callerID) },
		"getSubscriptions": func(callerID string) (interface{}, error) { return node.getSubscriptions(callerID) },
		"getPublications":  func(callerID string) (interface{}, error) { return node.getPublications(callerID) },
		"paramUpdate": func(callerID string, key string, value interface{}) (interface{}, error) {
			return node.paramUpdate(callerID, key, value)
		},
		"publisherUpdate": func(callerID string, topic string, publishers []interface{}) (interface{}, error) {
			return node.publisherUpdate(callerID, topic, publishers)
		},
		"requestTopic": func(callerID string, topic string, protocols []interface{}) (interface{}, error) {
			return node.requestTopic(callerID, topic, protocols)
		},
	}
	node.xmlrpcHandler = xmlrpc.NewHandler(m)
	node.httpServer = &http.Server{Handler: node.xmlrpcHandler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := node.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			node.logger.Errorf("slave API server: %v", err)
		}
	}()
	node.logger.Debugf("slave API listening on %s", node.xmlrpcURI)
	return nil
}

func (node *defaultNode) markDone() {
	node.doneOnce.Do(func() { close(node.done) })
}

func (node *defaultNode) OK() bool {
	select {
	case <-node.done:
		return false
	default:
		return true
	}
}

func (node *defaultNode) Name() string {
	return node.qualifiedName
}

func (node *defaultNode) ResolveName(name string) string {
	return node.nameResolver.remap(name)
}

func (node *defaultNode) Logger() Logger {
	return node.logger
}

func (node *defaultNode) NonRosArgs() []string {
	return node.nonRosArgs
}

func (node *defaultNode) getBusStats(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "", []interface{}{}), nil
}

func (node *defaultNode) getBusInfo(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "", []interface{}{}), nil
}

func (node *defaultNode) getMasterURI(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "", node.masterURI), nil
}

func (node *defaultNode) shutdown(callerID string, msg string) (interface{}, error) {
	node.logger.Infof("shutdown requested by %s: %s", callerID, msg)
	node.markDone()
	return buildRosAPIResult(APIStatusSuccess, "", 0), nil
}

func (node *defaultNode) getPid(callerID string) (interface{}, error) {
	return buildRosAPIResult(APIStatusSuccess, "", os.Getpid()), nil
}

func (node *defaultNode) getSubscriptions(callerID string) (interface{}, error) {
	node.mutex.Lock()
	defer node.mutex.Unlock()
	result := []interface{}{}
	for topic, sub := range node.subscribers {
		result = append(result, []interface{}{topic, sub.msgType.Name()})
	}
	return buildRosAPIResult(APIStatusSuccess, "", result), nil
}

func (node *defaultNode) getPublications(callerID string) (interface{}, error) {
	node.mutex.Lock()
	defer node.mutex.Unlock()
	result := []interface{}{}
	for topic, pub := range node.publishers {
		result = append(result, []interface{}{topic, pub.msgType.Name()})
	}
	return buildRosAPIResult(APIStatusSuccess, "", result), nil
}

func (node *defaultNode) paramUpdate(callerID string, key string, value interface{}) (interface{}, error) {
	node.logger.Debugf("paramUpdate %s from %s ignored", key, callerID)
	return buildRosAPIResult(APIStatusSuccess, "", 0), nil
}

func (node *defaultNode) publisherUpdate(callerID string, topic string, publishers []interface{}) (interface{}, error) {
	node.mutex.Lock()
	sub, ok := node.subscribers[topic]
	node.mutex.Unlock()
	if !ok {
		return buildRosAPIResult(APIStatusFailure, "No such topic", 0), nil
	}
	uris := make([]string, 0, len(publishers))
	for _, p := range publishers {
		if uri, ok := p.(string); ok {
			uris = append(uris, uri)
		}
	}
	node.logger.Debugf("publisherUpdate %s: %v", topic, uris)
	sub.updatePublishers(uris)
	return buildRosAPIResult(APIStatusSuccess, "", 0), nil
}

func (node *defaultNode) requestTopic(callerID string, topic string, protocols []interface{}) (interface{}, error) {
	node.mutex.Lock()
	pub, ok := node.publishers[topic]
	node.mutex.Unlock()
	if !ok {
		return buildRosAPIResult(APIStatusFailure, "No such topic", []interface{}{}), nil
	}
	for _, v := range protocols {
		params, ok := v.([]interface{})
		if !ok || len(params) == 0 {
			continue
		}
		if name, _ := params[0].(string); name != "TCPROS" {
			continue
		}
		host, port, err := pub.hostAndPort()
		if err != nil {
			return nil, err
		}
		return buildRosAPIResult(APIStatusSuccess, "", []interface{}{"TCPROS", host, port}), nil
	}
	return buildRosAPIResult(APIStatusFailure, "No supported protocol", []interface{}{}), nil
}

func (node *defaultNode) NewPublisher(topic string, msgType MessageType) (Publisher, error) {
	if !node.OK() {
		return nil, ErrNotOK
	}
	if !isValidName(topic) {
		return nil, errors.Errorf("invalid topic name %q", topic)
	}
	name := node.nameResolver.remap(topic)

	node.mutex.Lock()
	if pub, ok := node.publishers[name]; ok {
		node.mutex.Unlock()
		if pub.msgType.Name() != msgType.Name() {
			return nil, errors.Errorf("%s is already advertised as %s", name, pub.msgType.Name())
		}
		return pub, nil
	}
	pub, err := newDefaultPublisher(node, name, msgType)
	if err != nil {
		node.mutex.Unlock()
		return nil, err
	}
	node.publishers[name] = pub
	node.waitGroup.Add(1)
	go pub.start(&node.waitGroup)
	node.mutex.Unlock()

	_, err = callRosAPI(node.masterURI, "registerPublisher", node.qualifiedName, name, msgType.Name(), node.xmlrpcURI)
	if err != nil {
		pub.Shutdown()
		return nil, errors.Wrapf(err, "register publisher %s", name)
	}
	node.logger.Debugf("advertised %s [%s]", name, msgType.Name())
	return pub, nil
}

func (node *defaultNode) NewSubscriber(topic string, msgType MessageType, callback interface{}) (Subscriber, error) {
	if !node.OK() {
		return nil, ErrNotOK
	}
	if !isValidName(topic) {
		return nil, errors.Errorf("invalid topic name %q", topic)
	}
	fn, err := validateCallback(callback, msgType)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", topic)
	}
	name := node.nameResolver.remap(topic)

	node.mutex.Lock()
	if sub, ok := node.subscribers[name]; ok {
		node.mutex.Unlock()
		if sub.msgType.MD5Sum() != msgType.MD5Sum() {
			return nil, errors.Errorf("%s is already subscribed as %s", name, sub.msgType.Name())
		}
		sub.addCallback(fn)
		return sub, nil
	}
	sub := newDefaultSubscriber(node, name, msgType, fn)
	node.subscribers[name] = sub
	node.waitGroup.Add(1)
	go sub.start(&node.waitGroup)
	node.mutex.Unlock()

	result, err := callRosAPI(node.masterURI, "registerSubscriber", node.qualifiedName, name, msgType.Name(), node.xmlrpcURI)
	if err != nil {
		sub.Shutdown()
		return nil, errors.Wrapf(err, "register subscriber %s", name)
	}
	list, ok := result.([]interface{})
	if !ok {
		sub.Shutdown()
		return nil, errors.Errorf("registerSubscriber %s: publisher list is %T", name, result)
	}
	publishers := make([]string, 0, len(list))
	for _, item := range list {
		if uri, ok := item.(string); ok {
			publishers = append(publishers, uri)
		}
	}
	node.logger.Debugf("subscribed %s [%s], publishers %v", name, msgType.Name(), publishers)
	sub.updatePublishers(publishers)
	return sub, nil
}

func (node *defaultNode) NewServiceClient(service string, srvType ServiceType) ServiceClient {
	return newDefaultServiceClient(node, node.nameResolver.remap(service), srvType)
}

func (node *defaultNode) NewServiceServer(service string, srvType ServiceType, handler interface{}) (ServiceServer, error) {
	if !node.OK() {
		return nil, ErrNotOK
	}
	if !isValidName(service) {
		return nil, errors.Errorf("invalid service name %q", service)
	}
	fn, err := validateServiceHandler(handler, srvType)
	if err != nil {
		return nil, errors.Wrapf(err, "advertise service %s", service)
	}
	name := node.nameResolver.remap(service)

	node.mutex.Lock()
	old := node.servers[name]
	delete(node.servers, name)
	node.mutex.Unlock()
	if old != nil {
		old.stop()
	}

	server, err := newDefaultServiceServer(node, name, srvType, fn)
	if err != nil {
		return nil, err
	}
	node.mutex.Lock()
	node.servers[name] = server
	node.waitGroup.Add(1)
	go server.start(&node.waitGroup)
	node.mutex.Unlock()
	return server, nil
}

func (node *defaultNode) NewTimer(period time.Duration, callback func(TimerEvent)) Timer {
	timer := newDefaultTimer(period, callback, node.jobChan)
	if !node.OK() {
		timer.Stop()
		return timer
	}
	node.mutex.Lock()
	node.timers = append(node.timers, timer)
	node.waitGroup.Add(1)
	go timer.start(&node.waitGroup, node.done)
	node.mutex.Unlock()
	return timer
}

func (node *defaultNode) forgetPublisher(pub *defaultPublisher) {
	node.mutex.Lock()
	if node.publishers[pub.topic] == pub {
		delete(node.publishers, pub.topic)
	}
	node.mutex.Unlock()
}

func (node *defaultNode) forgetSubscriber(sub *defaultSubscriber) {
	node.mutex.Lock()
	if node.subscribers[sub.topic] == sub {
		delete(node.subscribers, sub.topic)
	}
	node.mutex.Unlock()
}

func (node *defaultNode) forgetServer(server *defaultServiceServer) {
	node.mutex.Lock()
	if node.servers[server.service] == server {
		delete(node.servers, server.service)
	}
	node.mutex.Unlock()
}

// SpinOnce runs one queued callback, waiting at most 10ms for it.
func (node *defaultNode) SpinOnce() {
	timeout := time.NewTimer(10 * time.Millisecond)
	defer timeout.Stop()
	select {
	case job := <-node.jobChan:
		job()
	case <-timeout.C:
	case <-node.done:
	}
}

// Spin runs queued callbacks until the node is shut down.
func (node *defaultNode) Spin() {
	for {
		select {
		case job := <-node.jobChan:
			job()
		case <-node.done:
			return
		}
	}
}

func (node *defaultNode) Shutdown() {
	node.shutdownOnce.Do(node.shutdownNode)
}

func (node *defaultNode) shutdownNode() {
	logger := node.logger
	logger.Debugf("shutting down %s", node.qualifiedName)
	node.closed.Store(true)
	node.markDone()

	node.mutex.Lock()
	timers := node.timers
	node.timers = nil
	subscribers := node.subscribers
	node.subscribers = make(map[string]*defaultSubscriber)
	publishers := node.publishers
	node.publishers = make(map[string]*defaultPublisher)
	servers := node.servers
	node.servers = make(map[string]*defaultServiceServer)
	node.mutex.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, s := range subscribers {
		s.stop()
	}
	for _, p := range publishers {
		p.stop()
	}
	for _, s := range servers {
		s.stop()
	}
	node.waitGroup.Wait()

	if node.httpServer != nil {
		node.httpServer.Close()
		node.xmlrpcHandler.WaitForShutdown()
	}
	logger.Debugf("%s shut down", node.qualifiedName)
}

func (node *defaultNode) GetParam(key string) (interface{}, error) {
	return callRosAPI(node.masterURI, "getParam", node.qualifiedName, node.nameResolver.remap(key))
}

func (node *defaultNode) SetParam(key string, value interface{}) error {
	_, err := callRosAPI(node.masterURI, "setParam", node.qualifiedName, node.nameResolver.remap(key), value)
	return err
}

func (node *defaultNode) HasParam(key string) (bool, error) {
	result, err := callRosAPI(node.masterURI, "hasParam", node.qualifiedName, node.nameResolver.remap(key))
	if err != nil {
		return false, err
	}
	hasParam, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("hasParam %s: result is %T", key, result)
	}
	return hasParam, nil
}

func (node *defaultNode) SearchParam(key string) (string, error) {
	result, err := callRosAPI(node.masterURI, "searchParam", node.qualifiedName, key)
	if err != nil {
		return "", err
	}
	foundKey, ok := result.(string)
	if !ok {
		return "", errors.Errorf("searchParam %s: result is %T", key, result)
	}
	return foundKey, nil
}

func (node *defaultNode) DeleteParam(key string) error {
	_, err := callRosAPI(node.masterURI, "deleteParam", node.qualifiedName, node.nameResolver.remap(key))
	return err
}
