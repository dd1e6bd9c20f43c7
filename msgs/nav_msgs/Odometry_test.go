package nav_msgs

import (
	"bytes"
	"testing"

	"github.com/mirte-robot/mirte-speed-control/msgs/std_msgs"
	"github.com/mirte-robot/mirte-speed-control/ros"
)

func TestOdometryMD5(t *testing.T) {
	if md5 := MsgOdometry.MD5Sum(); md5 != "cd5e73d190d741a2f92e81eda573aca7" {
		t.Error(md5)
	}
}

func TestOdometryRoundTrip(t *testing.T) {
	var odom Odometry
	odom.Header = std_msgs.Header{Seq: 3, Stamp: ros.NewTime(10, 500), FrameId: "odom"}
	odom.ChildFrameId = "base_link"
	odom.Pose.Pose.Position.X = 1.25
	odom.Pose.Pose.Orientation.W = 1
	odom.Pose.Covariance[0] = 0.01
	odom.Twist.Twist.Linear.X = 0.3
	odom.Twist.Twist.Angular.Z = -0.7
	odom.Twist.Covariance[35] = 0.02

	var buf bytes.Buffer
	if err := odom.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	expectedSize := (4 + 8 + 4 + 4) + (4 + 9) + (7+36)*8 + (6+36)*8
	if buf.Len() != expectedSize {
		t.Errorf("expected %d bytes, got %d", expectedSize, buf.Len())
	}

	msg := MsgOdometry.NewMessage()
	if err := msg.Deserialize(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if decoded := *msg.(*Odometry); decoded != odom {
		t.Errorf("expected %+v, got %+v", odom, decoded)
	}

	if err := msg.Deserialize(bytes.NewReader(buf.Bytes()[:buf.Len()-1])); err == nil {
		t.Error("expected an error for a truncated message")
	}
}
