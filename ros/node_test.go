package ros

import (
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func spinUntil(t *testing.T, node Node, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		node.SpinOnce()
	}
}

func TestNodeName(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "my_robot_base_node", "__ns:=/mirte", "extra")
	defer node.Shutdown()

	if node.Name() != "/mirte/my_robot_base_node" {
		t.Error(node.Name())
	}
	if node.ResolveName("~odom") != "/mirte/my_robot_base_node/odom" {
		t.Error(node.ResolveName("~odom"))
	}
	if args := node.NonRosArgs(); len(args) != 1 || args[0] != "extra" {
		t.Error(args)
	}
	if !node.OK() {
		t.Error("new node should be OK")
	}
}

func TestPrivateParamsFromArguments(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "param_node", "_wheel_radius:=0.05", "_ticks:=40", "_frame:=odom")
	defer node.Shutdown()

	var tests = []struct {
		key      string
		expected interface{}
	}{
		{"/param_node/wheel_radius", 0.05},
		{"/param_node/ticks", int32(40)},
		{"/param_node/frame", "odom"},
	}
	for _, test := range tests {
		value, found := master.param(test.key)
		if !found || value != test.expected {
			t.Errorf("%s: expected %v, got %v (%v)", test.key, test.expected, value, found)
		}
	}
}

func TestParamAPI(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "test_param")
	defer node.Shutdown()

	if hasParam, err := node.HasParam("/rosdistro"); err != nil || !hasParam {
		t.Error(hasParam, err)
	}
	if foundKey, err := node.SearchParam("rosdistro"); err != nil || foundKey != "/rosdistro" {
		t.Error(foundKey, err)
	}
	if err := node.SetParam("~rate", 20); err != nil {
		t.Fatal(err)
	}
	value, err := node.GetParam("~rate")
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := value.(int32); !ok || i != 20 {
		t.Errorf("%#v", value)
	}
	if err := node.DeleteParam("~rate"); err != nil {
		t.Error(err)
	}
	_, err = node.GetParam("~rate")
	if _, ok := errors.Cause(err).(*APIError); !ok {
		t.Errorf("expected *APIError, got %v", err)
	}
}

func TestPublishSubscribe(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	listener := newTestNode(t, master, "listener")
	defer listener.Shutdown()
	talker := newTestNode(t, master, "talker")
	defer talker.Shutdown()

	var received []int32
	var events []MessageEvent
	_, err := listener.NewSubscriber("/chatter", int32MsgType{}, func(msg *int32Msg, event MessageEvent) {
		received = append(received, msg.Data)
		events = append(events, event)
	})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	if _, err := listener.NewSubscriber("chatter", int32MsgType{}, func() { count++ }); err != nil {
		t.Fatal(err)
	}

	pub, err := talker.NewPublisher("/chatter", int32MsgType{})
	if err != nil {
		t.Fatal(err)
	}
	spinUntil(t, listener, 5*time.Second, func() bool { return pub.GetNumSubscribers() == 1 })

	for i := int32(1); i <= 3; i++ {
		if err := pub.Publish(&int32Msg{Data: i}); err != nil {
			t.Fatal(err)
		}
	}
	spinUntil(t, listener, 5*time.Second, func() bool { return len(received) == 3 })

	for i, data := range received {
		if data != int32(i+1) {
			t.Errorf("message %d: %d", i, data)
		}
	}
	if count != 3 {
		t.Error(count)
	}
	if events[0].PublisherName != "/talker" {
		t.Error(events[0].PublisherName)
	}
	if events[0].ConnectionHeader["type"] != "std_msgs/Int32" {
		t.Error(events[0].ConnectionHeader)
	}

	pub.Shutdown()
	if err := pub.Publish(&int32Msg{Data: 4}); err != ErrNotOK {
		t.Error(err)
	}
}

func TestSubscriberRejectsBadCallback(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "listener")
	defer node.Shutdown()

	var callbacks = []interface{}{
		42,
		func(a, b, c int) {},
		func(s string) {},
		func(m *int32Msg, e string) {},
	}
	for _, callback := range callbacks {
		if _, err := node.NewSubscriber("/chatter", int32MsgType{}, callback); err == nil {
			t.Errorf("%T should be rejected", callback)
		}
	}
	if _, err := node.NewSubscriber("/chatter", int32MsgType{}, func(m Message) {}); err != nil {
		t.Error(err)
	}
}

func TestPublisherRejectsWrongMD5(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	talker := newTestNode(t, master, "talker")
	defer talker.Shutdown()
	pub, err := talker.NewPublisher("/chatter", int32MsgType{})
	if err != nil {
		t.Fatal(err)
	}
	host, port, err := pub.(*defaultPublisher).hostAndPort()
	if err != nil {
		t.Fatal(err)
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	headers := []header{
		{"topic", "/chatter"},
		{"md5sum", "0123456789abcdef0123456789abcdef"},
		{"type", "std_msgs/Int32"},
		{"callerid", "/intruder"},
	}
	if err := writeConnectionHeader(headers, conn); err != nil {
		t.Fatal(err)
	}
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := headerMap(resHeaders)["error"]; !ok {
		t.Error(resHeaders)
	}
	if pub.GetNumSubscribers() != 0 {
		t.Error(pub.GetNumSubscribers())
	}
}

func TestServiceCall(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	server := newTestNode(t, master, "add_two_ints_server")
	defer server.Shutdown()
	client := newTestNode(t, master, "add_two_ints_client")
	defer client.Shutdown()

	_, err := server.NewServiceServer("/add_two_ints", addTwoIntsType{}, func(srv *addTwoInts) error {
		if srv.Request.A < 0 {
			return errors.New("negative input")
		}
		srv.Response.Sum = srv.Request.A + srv.Request.B
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	go server.Spin()

	cli := client.NewServiceClient("/add_two_ints", addTwoIntsType{})
	srv := &addTwoInts{Request: addTwoIntsRequest{A: 40, B: 2}}
	if err := cli.Call(srv); err != nil {
		t.Fatal(err)
	}
	if srv.Response.Sum != 42 {
		t.Error(srv.Response.Sum)
	}

	srv = &addTwoInts{Request: addTwoIntsRequest{A: -1, B: 2}}
	err = cli.Call(srv)
	serviceErr, ok := err.(*ServiceError)
	if !ok {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
	if serviceErr.Message != "negative input" {
		t.Error(serviceErr.Message)
	}

	missing := client.NewServiceClient("/missing", addTwoIntsType{})
	if err := missing.Call(&addTwoInts{}); err == nil {
		t.Error("calling an unknown service should fail")
	}

	cli.Shutdown()
	if err := cli.Call(&addTwoInts{}); err != ErrNotOK {
		t.Errorf("expected ErrNotOK after Shutdown, got %v", err)
	}
	other := client.NewServiceClient("/add_two_ints", addTwoIntsType{})
	srv = &addTwoInts{Request: addTwoIntsRequest{A: 1, B: 2}}
	if err := other.Call(srv); err != nil || srv.Response.Sum != 3 {
		t.Errorf("second client: %v, sum %d", err, srv.Response.Sum)
	}
}

func TestServiceServerRejectsBadHandler(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "server")
	defer node.Shutdown()

	var handlers = []interface{}{
		"handler",
		func(srv *addTwoInts) {},
		func(srv *addTwoInts) int { return 0 },
		func(srv *int32Msg) error { return nil },
	}
	for _, handler := range handlers {
		if _, err := node.NewServiceServer("/add_two_ints", addTwoIntsType{}, handler); err == nil {
			t.Errorf("%T should be rejected", handler)
		}
	}
}

func TestServiceProbe(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "server")
	defer node.Shutdown()
	_, err := node.NewServiceServer("/add_two_ints", addTwoIntsType{}, func(srv *addTwoInts) error { return nil })
	if err != nil {
		t.Fatal(err)
	}

	master.mutex.Lock()
	uri := master.services["/add_two_ints"]
	master.mutex.Unlock()
	conn, err := net.Dial("tcp", strings.TrimPrefix(uri, "rosrpc://"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	writeConnectionHeader([]header{{"callerid", "/rosservice"}, {"service", "/add_two_ints"}, {"md5sum", "*"}, {"probe", "1"}}, conn)
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		t.Fatal(err)
	}
	if headerMap(resHeaders)["type"] != "rospy_tutorials/AddTwoInts" {
		t.Error(resHeaders)
	}
}

func TestTimerRunsOnSpin(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "timer_node")
	defer node.Shutdown()

	fired := 0
	timer := node.NewTimer(5*time.Millisecond, func(TimerEvent) { fired++ })
	spinUntil(t, node, 5*time.Second, func() bool { return fired >= 2 })
	timer.Stop()
}

func TestSlaveAPI(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "slave")
	defer node.Shutdown()
	if _, err := node.NewPublisher("/odom", int32MsgType{}); err != nil {
		t.Fatal(err)
	}

	uri, err := callRosAPI(node.xmlrpcURI, "getMasterUri", "/test")
	if err != nil || uri != master.URL() {
		t.Error(uri, err)
	}
	pubs, err := callRosAPI(node.xmlrpcURI, "getPublications", "/test")
	if err != nil {
		t.Fatal(err)
	}
	list := pubs.([]interface{})
	if len(list) != 1 || list[0].([]interface{})[0] != "/odom" {
		t.Error(pubs)
	}
	protocols := []interface{}{[]interface{}{"UDPROS"}}
	if _, err := callRosAPI(node.xmlrpcURI, "requestTopic", "/test", "/odom", protocols); err == nil {
		t.Error("UDPROS should not be offered")
	}
	if _, err := callRosAPI(node.xmlrpcURI, "publisherUpdate", "/test", "/unknown", []interface{}{}); err == nil {
		t.Error("publisherUpdate on an unknown topic should fail")
	}

	if _, err := callRosAPI(node.xmlrpcURI, "shutdown", "/test", "bye"); err != nil {
		t.Error(err)
	}
	if node.OK() {
		t.Error("node should stop after a shutdown request")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	master := newFakeMaster()
	defer master.Close()

	node := newTestNode(t, master, "short_lived")
	if _, err := node.NewPublisher("/odom", int32MsgType{}); err != nil {
		t.Fatal(err)
	}
	node.Shutdown()
	node.Shutdown()

	if node.OK() {
		t.Error("OK after Shutdown")
	}
	master.mutex.Lock()
	pubs := master.publishers["/odom"]
	master.mutex.Unlock()
	if len(pubs) != 0 {
		t.Error(pubs)
	}
	if _, err := node.NewPublisher("/odom", int32MsgType{}); err != ErrNotOK {
		t.Error(err)
	}
}
