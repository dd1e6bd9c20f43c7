package ros

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"
)

func TestConnectionHeaderWireFormat(t *testing.T) {
	var buf bytes.Buffer
	headers := []header{{"topic", "/odom"}, {"md5sum", "*"}}
	if err := writeConnectionHeader(headers, &buf); err != nil {
		t.Fatal(err)
	}

	expected := []byte{
		27, 0, 0, 0,
		11, 0, 0, 0, 't', 'o', 'p', 'i', 'c', '=', '/', 'o', 'd', 'o', 'm',
		8, 0, 0, 0, 'm', 'd', '5', 's', 'u', 'm', '=', '*',
	}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}

	result, err := readConnectionHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result, headers) {
		t.Error(result)
	}
}

func TestConnectionHeaderValueWithEquals(t *testing.T) {
	var buf bytes.Buffer
	headers := []header{{"message_definition", "int32 X=1\n"}}
	writeConnectionHeader(headers, &buf)
	result, err := readConnectionHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if headerMap(result)["message_definition"] != "int32 X=1\n" {
		t.Error(result)
	}
}

func TestMalformedConnectionHeader(t *testing.T) {
	var tests = [][]byte{
		{8, 0, 0, 0, 10, 0, 0, 0, 'a', '=', 'b', 'c'},
		{5, 0, 0, 0, 1, 0, 0, 0, 'a'},
		{6, 0, 0, 0, 2, 0},
		{0, 0, 0, 1},
	}
	for _, data := range tests {
		if _, err := readConnectionHeader(bytes.NewReader(data)); err == nil {
			t.Errorf("%v should fail", data)
		}
	}
}

func TestFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if binary.LittleEndian.Uint32(buf.Bytes()) != 3 {
		t.Error(buf.Bytes())
	}
	payload, err := readFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload, []byte{1, 2, 3}) {
		t.Error(payload)
	}
	if _, err := readFrame(&buf); err == nil {
		t.Error("reading past the end should fail")
	}
}
