package msgspec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	ConstChar   = "="
	CommentChar = "#"
	IODelim     = "---"
)

type SyntaxError struct {
	FullName string
	Line     int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[%s@%d] %s", e.FullName, e.Line, e.Message)
}

// convertConstantValue converts a constant literal to the Go value of the
// given primitive type.
func convertConstantValue(fieldType string, valueLiteral string) (interface{}, error) {
	switch fieldType {
	case "float32":
		result, err := strconv.ParseFloat(valueLiteral, 32)
		return float32(result), err
	case "float64":
		return strconv.ParseFloat(valueLiteral, 64)
	case "string":
		return strings.TrimSpace(valueLiteral), nil
	case "int8", "byte":
		result, err := strconv.ParseInt(valueLiteral, 0, 8)
		return int8(result), err
	case "int16":
		result, err := strconv.ParseInt(valueLiteral, 0, 16)
		return int16(result), err
	case "int32":
		result, err := strconv.ParseInt(valueLiteral, 0, 32)
		return int32(result), err
	case "int64":
		return strconv.ParseInt(valueLiteral, 0, 64)
	case "uint8", "char":
		result, err := strconv.ParseUint(valueLiteral, 0, 8)
		return uint8(result), err
	case "uint16":
		result, err := strconv.ParseUint(valueLiteral, 0, 16)
		return uint16(result), err
	case "uint32":
		result, err := strconv.ParseUint(valueLiteral, 0, 32)
		return uint32(result), err
	case "uint64":
		return strconv.ParseUint(valueLiteral, 0, 64)
	case "bool":
		// genmsg evaluates bool literals as Python expressions; accept the
		// common spellings and non-negative integers.
		switch valueLiteral {
		case "True":
			return true, nil
		case "False", "None":
			return false, nil
		}
		if val, err := strconv.ParseUint(valueLiteral, 10, 0); err == nil {
			return val != 0, nil
		}
		return nil, fmt.Errorf("invalid constant literal for bool: [%s]", valueLiteral)
	}
	return nil, fmt.Errorf("invalid constant type: [%s]", fieldType)
}

func packageResourceName(name string) (string, string, error) {
	components := strings.Split(name, "/")
	switch len(components) {
	case 1:
		return "", name, nil
	case 2:
		return components[0], components[1], nil
	}
	return "", "", fmt.Errorf("invalid name %s", name)
}

func stripComment(line string) string {
	return strings.TrimSpace(strings.SplitN(line, CommentChar, 2)[0])
}

func loadConstantLine(line string) (*Constant, error) {
	cleanLine := stripComment(line)
	sepIndex := strings.IndexFunc(cleanLine, unicode.IsSpace)
	if sepIndex < 0 {
		return nil, fmt.Errorf("could not find a constant name after the type name")
	}

	fieldType := cleanLine[:sepIndex]
	if !isPrimitiveType(fieldType) {
		return nil, fmt.Errorf("[%s] is not a legal constant type", fieldType)
	}

	var keyValue string
	if fieldType == "string" {
		// String constants take everything right of '=', comments included.
		trimmed := strings.TrimSpace(line)
		keyValue = trimmed[strings.IndexFunc(trimmed, unicode.IsSpace):]
	} else {
		keyValue = cleanLine[sepIndex:]
	}
	kvSplits := strings.SplitN(keyValue, ConstChar, 2)
	if len(kvSplits) != 2 {
		return nil, fmt.Errorf("a constant definition requires its value")
	}
	name := strings.TrimSpace(kvSplits[0])
	valueText := strings.TrimSpace(kvSplits[1])
	if fieldType == "string" {
		valueText = strings.TrimLeftFunc(kvSplits[1], unicode.IsSpace)
	}

	value, err := convertConstantValue(fieldType, valueText)
	if err != nil {
		return nil, err
	}
	return &Constant{Type: fieldType, Name: name, Value: value, ValueText: valueText}, nil
}

func loadFieldLine(line string, packageName string) (*Field, error) {
	words := strings.Fields(stripComment(line))
	if len(words) != 2 {
		return nil, fmt.Errorf("invalid declaration: %s", line)
	}
	fieldType, name := words[0], words[1]
	if !isLegalResourceName(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%s is not a legal message field name", name)
	}
	if !isValidMsgType(fieldType) {
		return nil, fmt.Errorf("%s is not a legal message field type", fieldType)
	}

	base := baseMsgType(fieldType)
	switch {
	case base == HeaderType:
		fieldType = HeaderFullName + fieldType[len(base):]
	case len(packageName) > 0 && !strings.Contains(base, "/") && !isBuiltinType(base):
		fieldType = packageName + "/" + fieldType
	}

	pkg, baseType, isArray, arrayLen, err := parseType(fieldType)
	if err != nil {
		return nil, err
	}
	return NewField(pkg, baseType, name, isArray, arrayLen), nil
}

// parseMsg splits a definition into constants and fields.
func parseMsg(text string, fullname string) (*MsgSpec, error) {
	packageName, shortName, err := packageResourceName(fullname)
	if err != nil {
		return nil, err
	}

	spec := &MsgSpec{
		Text:      text,
		FullName:  fullname,
		ShortName: shortName,
		Package:   packageName,
	}
	for lineno, origLine := range strings.Split(text, "\n") {
		cleanLine := stripComment(origLine)
		switch {
		case len(cleanLine) == 0:
			continue
		case strings.Contains(cleanLine, ConstChar):
			constant, err := loadConstantLine(origLine)
			if err != nil {
				return nil, &SyntaxError{fullname, lineno + 1, err.Error()}
			}
			spec.Constants = append(spec.Constants, *constant)
		default:
			field, err := loadFieldLine(origLine, packageName)
			if err != nil {
				return nil, &SyntaxError{fullname, lineno + 1, err.Error()}
			}
			spec.Fields = append(spec.Fields, *field)
		}
	}
	return spec, nil
}

// splitSrv splits a .srv definition into request and response text.
func splitSrv(text string, fullname string) (string, string, error) {
	var req, res []string
	seen := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == IODelim && !seen {
			seen = true
			continue
		}
		if seen {
			res = append(res, line)
		} else {
			req = append(req, line)
		}
	}
	if !seen {
		return "", "", &SyntaxError{fullname, 0, "missing '---'"}
	}
	return strings.Join(req, "\n"), strings.Join(res, "\n"), nil
}
