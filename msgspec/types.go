// Package msgspec parses ROS .msg and .srv definitions and computes the
// MD5 sums used to check type compatibility during the TCPROS handshake.
package msgspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	HeaderType     = "Header"
	HeaderFullName = "std_msgs/Header"
	TimeType       = "time"
	DurationType   = "duration"
)

var PrimitiveTypes = []string{
	"int8", "uint8", "int16", "uint16", "int32", "uint32", "int64", "uint64",
	"float32", "float64",
	"string",
	"bool",
	// deprecated:
	"char", "byte",
}

var BuiltinTypes = append([]string{TimeType, DurationType}, PrimitiveTypes...)

var resourceNamePattern = regexp.MustCompile(`^[A-Za-z][\w/]*$`)

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

func isPrimitiveType(name string) bool { return contains(PrimitiveTypes, name) }

func isBuiltinType(name string) bool { return contains(BuiltinTypes, name) }

func isLegalResourceName(name string) bool {
	if strings.Contains(name, "//") {
		return false
	}
	return resourceNamePattern.MatchString(name)
}

func baseMsgType(t string) string {
	if index := strings.Index(t, "["); index >= 0 {
		return t[:index]
	}
	return t
}

func isValidMsgType(t string) bool {
	if t != strings.TrimSpace(t) {
		return false
	}
	base := baseMsgType(t)
	if !isLegalResourceName(base) {
		return false
	}

	inBracket := false
	for _, c := range t[len(base):] {
		switch {
		case !inBracket && c == '[':
			inBracket = true
		case inBracket && c == ']':
			inBracket = false
		case inBracket && unicode.IsDigit(c):
		default:
			return false
		}
	}
	return !inBracket
}

func splitType(t string) (string, string) {
	if index := strings.Index(t, "/"); index >= 0 {
		return t[:index], t[index+1:]
	}
	return "", t
}

// parseType splits "pkg/Type[N]" into its parts. arrayLen is -1 for
// variable-length arrays.
func parseType(msgType string) (pkg string, baseType string, isArray bool, arrayLen int, err error) {
	index := strings.Index(msgType, "[")
	if index < 0 {
		pkg, baseType = splitType(msgType)
		return pkg, baseType, false, 0, nil
	}
	if msgType[len(msgType)-1] != ']' {
		return "", msgType, false, 0, fmt.Errorf("missing ']' in %s", msgType)
	}
	pkg, baseType = splitType(msgType[:index])
	rest := msgType[index+1 : len(msgType)-1]
	if rest == "" {
		return pkg, baseType, true, -1, nil
	}
	n, err := strconv.ParseInt(rest, 10, 32)
	if err != nil {
		return pkg, baseType, false, 0, err
	}
	return pkg, baseType, true, int(n), nil
}

// Constant is a "type NAME=value" line.
type Constant struct {
	Type      string
	Name      string
	Value     interface{}
	ValueText string
}

func (c *Constant) String() string {
	return fmt.Sprintf("%s %s=%s", c.Type, c.Name, c.ValueText)
}

// Field is a "type name" line.
type Field struct {
	Package   string
	Type      string
	Name      string
	IsBuiltin bool
	IsArray   bool
	ArrayLen  int
}

func NewField(pkg string, fieldType string, name string, isArray bool, arrayLen int) *Field {
	return &Field{
		Package:   pkg,
		Type:      fieldType,
		Name:      name,
		IsBuiltin: isBuiltinType(fieldType),
		IsArray:   isArray,
		ArrayLen:  arrayLen,
	}
}

// FullType returns the package-qualified type without array suffix.
func (f *Field) FullType() string {
	if f.Package == "" {
		return f.Type
	}
	return f.Package + "/" + f.Type
}

func (f *Field) String() string {
	switch {
	case f.IsArray && f.ArrayLen > -1:
		return fmt.Sprintf("%s[%d] %s", f.FullType(), f.ArrayLen, f.Name)
	case f.IsArray:
		return fmt.Sprintf("%s[] %s", f.FullType(), f.Name)
	default:
		return fmt.Sprintf("%s %s", f.FullType(), f.Name)
	}
}

type MsgSpec struct {
	Fields    []Field
	Constants []Constant
	Text      string
	MD5Sum    string
	FullName  string
	ShortName string
	Package   string
}

type SrvSpec struct {
	Package   string
	ShortName string
	FullName  string
	Text      string
	MD5Sum    string
	Request   *MsgSpec
	Response  *MsgSpec
}
