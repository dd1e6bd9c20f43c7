// Package xmlrpc implements the subset of XML-RPC spoken by the ROS master
// and slave APIs: a value codec, a client and an http.Handler.
package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func xmlEscape(s string) string {
	var buffer bytes.Buffer
	xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}

func emitValue(buf *bytes.Buffer, value interface{}) error {
	if bs, ok := value.([]byte); ok {
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(bs))
		buf.WriteString("</base64>")
		return nil
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return nil
	}

	switch val.Kind() {
	case reflect.Bool:
		buf.WriteString("<boolean>")
		if val.Bool() {
			buf.WriteString("1")
		} else {
			buf.WriteString("0")
		}
		buf.WriteString("</boolean>")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(val.Int(), 10))
		buf.WriteString("</int>")
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatUint(val.Uint(), 10))
		buf.WriteString("</int>")
	case reflect.Float32, reflect.Float64:
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(val.Float(), 'g', -1, 64))
		buf.WriteString("</double>")
	case reflect.String:
		buf.WriteString("<string>")
		buf.WriteString(xmlEscape(val.String()))
		buf.WriteString("</string>")
	case reflect.Array, reflect.Slice:
		buf.WriteString("<array><data>")
		for i := 0; i < val.Len(); i++ {
			buf.WriteString("<value>")
			if err := emitValue(buf, val.Index(i).Interface()); err != nil {
				return err
			}
			buf.WriteString("</value>")
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return errors.New("map key must be string")
		}
		keys := make([]string, 0, val.Len())
		for _, key := range val.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		buf.WriteString("<struct>")
		for _, key := range keys {
			buf.WriteString("<member><name>")
			buf.WriteString(xmlEscape(key))
			buf.WriteString("</name><value>")
			member := val.MapIndex(reflect.ValueOf(key).Convert(val.Type().Key()))
			if err := emitValue(buf, member.Interface()); err != nil {
				return err
			}
			buf.WriteString("</value></member>")
		}
		buf.WriteString("</struct>")
	default:
		return fmt.Errorf("unsupported kind %v (%v)", val.Kind(), val.Type())
	}
	return nil
}

func emitRequest(buf *bytes.Buffer, method string, args ...interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	buf.WriteString(xmlEscape(method))
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param><value>")
		if err := emitValue(buf, arg); err != nil {
			return errors.Wrapf(err, "param of %s", method)
		}
		buf.WriteString("</value></param>")
	}
	buf.WriteString("</params></methodCall>")
	return nil
}

func emitResponse(buf *bytes.Buffer, value interface{}) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param><value>")
	if err := emitValue(buf, value); err != nil {
		return err
	}
	buf.WriteString("</value></param></params></methodResponse>")
	return nil
}

func emitFault(buf *bytes.Buffer, code int, message string) error {
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault><value>")
	fault := map[string]interface{}{
		"faultCode":   code,
		"faultString": message,
	}
	if err := emitValue(buf, fault); err != nil {
		return err
	}
	buf.WriteString("</value></fault></methodResponse>")
	return nil
}

func nextTag(d *xml.Decoder) (xml.StartElement, error) {
	for {
		token, err := d.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if elem, ok := token.(xml.StartElement); ok {
			return elem, nil
		}
	}
}

func expectNextTag(d *xml.Decoder, name string) (xml.StartElement, error) {
	tag, err := nextTag(d)
	if err != nil {
		return xml.StartElement{}, err
	}
	if tag.Name.Local != name {
		return xml.StartElement{}, errors.Errorf("expected <%s> but got <%s>", name, tag.Name.Local)
	}
	return tag, nil
}

// scalarText reads the character data of a scalar element whose start tag
// has already been consumed. The scalar's end tag and the enclosing
// </value> are consumed too.
func scalarText(d *xml.Decoder, name string) (string, error) {
	token, err := d.Token()
	if err != nil {
		return "", err
	}
	switch t := token.(type) {
	case xml.CharData:
		text := string(t.Copy())
		if err := d.Skip(); err != nil {
			return "", err
		}
		return text, d.Skip()
	case xml.EndElement:
		if t.Name.Local == name {
			return "", d.Skip()
		}
	}
	return "", errors.Errorf("%s: unexpected token", name)
}

// parseValue parses a value after the <value> tag has been read. On success
// the closing </value> tag has been consumed as well.
func parseValue(d *xml.Decoder) (interface{}, error) {
	token, err := d.Token()
	if err != nil {
		return nil, err
	}

	switch t := token.(type) {
	case xml.StartElement:
		return parseTypedValue(d, t.Name.Local)
	case xml.CharData:
		// An untyped value is a string. Whitespace alone is formatting.
		text := string(t.Copy())
		if strings.TrimSpace(text) == "" {
			return parseValue(d)
		}
		return text, d.Skip()
	case xml.EndElement:
		return "", nil
	}
	return nil, errors.New("invalid value")
}

func parseTypedValue(d *xml.Decoder, kind string) (interface{}, error) {
	switch kind {
	case "boolean":
		text, err := scalarText(d, kind)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(text) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, errors.Errorf("boolean: invalid literal %q", text)
	case "i4", "int":
		text, err := scalarText(d, kind)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(strings.TrimSpace(text), 0, 32)
		if err != nil {
			return nil, errors.Wrap(err, kind)
		}
		return int32(i), nil
	case "double":
		text, err := scalarText(d, kind)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, errors.Wrap(err, kind)
		}
		return f, nil
	case "string":
		return scalarText(d, kind)
	case "base64":
		text, err := scalarText(d, kind)
		if err != nil {
			return nil, err
		}
		bs, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, errors.Wrap(err, kind)
		}
		return bs, nil
	case "array":
		return parseArray(d)
	case "struct":
		return parseStruct(d)
	}
	return nil, errors.Errorf("unsupported value type <%s>", kind)
}

func parseArray(d *xml.Decoder) (interface{}, error) {
	if _, err := expectNextTag(d, "data"); err != nil {
		return nil, err
	}
	var a []interface{}
	for {
		token, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				v, err := parseValue(d)
				if err != nil {
					return nil, err
				}
				a = append(a, v)
			}
		case xml.EndElement:
			if t.Name.Local == "array" {
				return a, d.Skip()
			}
		}
	}
}

func parseStruct(d *xml.Decoder) (interface{}, error) {
	m := make(map[string]interface{})
	var name string
	var value interface{}
	for {
		token, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				token, err = d.Token()
				if err != nil {
					return nil, err
				}
				data, ok := token.(xml.CharData)
				if !ok {
					return nil, errors.New("struct: member without name")
				}
				name = string(data.Copy())
			case "value":
				value, err = parseValue(d)
				if err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "member":
				m[name] = value
				name, value = "", nil
			case "struct":
				return m, d.Skip()
			}
		}
	}
}

func parseRequest(d *xml.Decoder) (string, []interface{}, error) {
	if _, err := expectNextTag(d, "methodCall"); err != nil {
		return "", nil, err
	}
	if _, err := expectNextTag(d, "methodName"); err != nil {
		return "", nil, err
	}
	token, err := d.Token()
	if err != nil {
		return "", nil, err
	}
	data, ok := token.(xml.CharData)
	if !ok {
		return "", nil, errors.New("invalid methodName")
	}
	name := strings.TrimSpace(string(data))

	var args []interface{}
	for {
		token, err := d.Token()
		if err != nil {
			return "", nil, errors.Wrapf(err, "params of %s", name)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" {
				v, err := parseValue(d)
				if err != nil {
					return "", nil, err
				}
				args = append(args, v)
			}
		case xml.EndElement:
			if t.Name.Local == "params" || t.Name.Local == "methodCall" {
				return name, args, nil
			}
		}
	}
}

// parseResponse returns ok=false with the fault struct as result when the
// response is a fault.
func parseResponse(d *xml.Decoder) (bool, interface{}, error) {
	if _, err := expectNextTag(d, "methodResponse"); err != nil {
		return false, nil, err
	}
	tag, err := nextTag(d)
	if err != nil {
		return false, nil, err
	}
	switch tag.Name.Local {
	case "params":
		if _, err := expectNextTag(d, "param"); err != nil {
			return false, nil, err
		}
		if _, err := expectNextTag(d, "value"); err != nil {
			return false, nil, err
		}
		result, err := parseValue(d)
		if err != nil {
			return false, nil, err
		}
		return true, result, nil
	case "fault":
		if _, err := expectNextTag(d, "value"); err != nil {
			return false, nil, err
		}
		result, err := parseValue(d)
		if err != nil {
			return false, nil, err
		}
		return false, result, nil
	}
	return false, nil, errors.Errorf("unexpected <%s> in methodResponse", tag.Name.Local)
}
