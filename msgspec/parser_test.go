package msgspec

import (
	"reflect"
	"testing"
)

func TestConvertConstantValue(t *testing.T) {
	var tests = []struct {
		fieldType    string
		valueLiteral string
		expected     interface{}
		expectError  bool
	}{
		{"bool", "0", false, false},
		{"bool", "1", true, false},
		{"bool", "2", true, false},
		{"bool", "-2", true, true},
		{"bool", "True", true, false},
		{"bool", "False", false, false},
		{"bool", "None", false, false},
		{"float32", "2.72", float32(2.72), false},
		{"float64", "-3.14", float64(-3.14), false},
		{"int8", "-129", 0, true},
		{"int8", "-128", int8(-128), false},
		{"int8", "127", int8(127), false},
		{"int8", "128", 0, true},
		{"int16", "-32768", int16(-32768), false},
		{"int16", "32768", 0, true},
		{"int32", "-2147483648", int32(-2147483648), false},
		{"int32", "2147483648", 0, true},
		{"int64", "9223372036854775807", int64(9223372036854775807), false},
		{"int64", "9223372036854775808", 0, true},
		{"uint8", "-1", 0, true},
		{"uint8", "255", uint8(255), false},
		{"uint8", "256", 0, true},
		{"uint16", "65535", uint16(65535), false},
		{"uint32", "4294967295", uint32(4294967295), false},
		{"uint32", "4294967296", 0, true},
		{"uint64", "18446744073709551615", uint64(18446744073709551615), false},
		{"string", "Lorem Ipsum", "Lorem Ipsum", false},
		{"Header", "1", nil, true},
	}

	for _, test := range tests {
		result, e := convertConstantValue(test.fieldType, test.valueLiteral)
		if test.expectError {
			if e == nil {
				t.Errorf("INPUT(%s : %s) | should fail but succeeded", test.valueLiteral, test.fieldType)
			}
			continue
		}
		if e != nil {
			t.Errorf("INPUT(%s : %s) | %s", test.valueLiteral, test.fieldType, e.Error())
		} else if result != test.expected {
			format := "INPUT(%s : %s) | Expected: [%v: %v], Actual: [%v : %v]"
			t.Errorf(format, test.valueLiteral, test.fieldType, test.expected, reflect.TypeOf(test.expected), result, reflect.TypeOf(result))
		}
	}
}

func TestLoadConstantLine(t *testing.T) {
	var tests = []struct {
		line     string
		expected Constant
	}{
		{"int32 X=123", Constant{"int32", "X", int32(123), "123"}},
		{"int32 Y = -123 # comment", Constant{"int32", "Y", int32(-123), "-123"}},
		{"string FOO=foo # not a comment", Constant{"string", "FOO", "foo # not a comment", "foo # not a comment"}},
		{"bool ENABLED=True", Constant{"bool", "ENABLED", true, "True"}},
	}
	for _, test := range tests {
		c, err := loadConstantLine(test.line)
		if err != nil {
			t.Errorf("%s: %v", test.line, err)
			continue
		}
		if !reflect.DeepEqual(*c, test.expected) {
			t.Errorf("%s: expected %+v, got %+v", test.line, test.expected, *c)
		}
	}

	for _, line := range []string{"int32 X", "Header H=1", "int32"} {
		if _, err := loadConstantLine(line); err == nil {
			t.Errorf("%s: should fail", line)
		}
	}
}

func TestLoadFieldLine(t *testing.T) {
	var tests = []struct {
		line     string
		pkg      string
		expected Field
	}{
		{"int32 x", "geometry_msgs", Field{"", "int32", "x", true, false, 0}},
		{"float64[36] covariance", "geometry_msgs", Field{"", "float64", "covariance", true, true, 36}},
		{"string[] name  # joint names", "sensor_msgs", Field{"", "string", "name", true, true, -1}},
		{"Header header", "nav_msgs", Field{"std_msgs", "Header", "header", false, false, 0}},
		{"Point position", "geometry_msgs", Field{"geometry_msgs", "Point", "position", false, false, 0}},
		{"geometry_msgs/Twist twist", "nav_msgs", Field{"geometry_msgs", "Twist", "twist", false, false, 0}},
		{"Vector3[4] corners", "geometry_msgs", Field{"geometry_msgs", "Vector3", "corners", false, true, 4}},
		{"time stamp", "std_msgs", Field{"", "time", "stamp", true, false, 0}},
	}
	for _, test := range tests {
		f, err := loadFieldLine(test.line, test.pkg)
		if err != nil {
			t.Errorf("%s: %v", test.line, err)
			continue
		}
		if !reflect.DeepEqual(*f, test.expected) {
			t.Errorf("%s: expected %+v, got %+v", test.line, test.expected, *f)
		}
	}

	for _, line := range []string{"int32", "int32 0x", "int32[ x", "int32[a] x", "int32 a b"} {
		if _, err := loadFieldLine(line, "pkg"); err == nil {
			t.Errorf("%s: should fail", line)
		}
	}
}

func TestSplitSrv(t *testing.T) {
	req, res, err := splitSrv("int32 speed\n---\nbool status\n", "mirte_msgs/SetMotorSpeed")
	if err != nil {
		t.Fatal(err)
	}
	if req != "int32 speed" {
		t.Errorf("request: %q", req)
	}
	if res != "bool status\n" {
		t.Errorf("response: %q", res)
	}

	if _, _, err := splitSrv("int32 speed\n", "x/Y"); err == nil {
		t.Error("missing delimiter should fail")
	}
}
