package std_msgs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteString writes a length-prefixed ROS string.
func WriteString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

// ReadString reads a length-prefixed ROS string.
func ReadString(buf *bytes.Reader) (string, error) {
	var size uint32
	if err := binary.Read(buf, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if int64(size) > int64(buf.Len()) {
		return "", errors.Wrapf(io.ErrUnexpectedEOF, "string of %d bytes", size)
	}
	data := make([]byte, int(size))
	if _, err := io.ReadFull(buf, data); err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadArrayLen reads the length prefix of a variable-length array whose
// elements take at least elemSize bytes each.
func ReadArrayLen(buf *bytes.Reader, elemSize int) (int, error) {
	var size uint32
	if err := binary.Read(buf, binary.LittleEndian, &size); err != nil {
		return 0, err
	}
	if int64(size)*int64(elemSize) > int64(buf.Len()) {
		return 0, errors.Wrapf(io.ErrUnexpectedEOF, "array of %d elements", size)
	}
	return int(size), nil
}
