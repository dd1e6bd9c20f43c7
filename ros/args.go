package ros

import (
	"math"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// processArguments splits command-line arguments into remappings
// (from:=to), private parameters (_name:=value, returned without the
// underscore), special keys (__name:=value) and the remaining arguments.
func processArguments(args []string) (NameMap, NameMap, NameMap, []string) {
	mapping := make(NameMap)
	params := make(NameMap)
	specials := make(NameMap)
	rest := make([]string, 0)
	for _, arg := range args {
		components := strings.Split(arg, Remap)
		if len(components) != 2 {
			rest = append(rest, arg)
			continue
		}
		key, value := components[0], components[1]
		switch {
		case strings.HasPrefix(key, "__"):
			specials[key] = value
		case strings.HasPrefix(key, "_"):
			params[key[1:]] = value
		default:
			mapping[key] = value
		}
	}
	return mapping, params, specials, rest
}

// parseParamValue interprets a command-line parameter literal. JSON
// numbers, booleans, quoted strings, arrays and objects keep their type;
// anything else is taken as a plain string.
func parseParamValue(literal string) interface{} {
	trimmed := strings.TrimSpace(literal)
	if trimmed == "" {
		return literal
	}
	data := []byte(trimmed)
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return literal
	}
	switch dataType {
	case jsonparser.Number, jsonparser.Boolean:
		if string(value) != trimmed {
			return literal
		}
	case jsonparser.String:
		if len(trimmed) < 2 || trimmed[0] != '"' || trimmed[len(trimmed)-1] != '"' {
			return literal
		}
	case jsonparser.Array:
		if trimmed[len(trimmed)-1] != ']' {
			return literal
		}
	case jsonparser.Object:
		if trimmed[len(trimmed)-1] != '}' {
			return literal
		}
	default:
		return literal
	}
	result, err := convertJSONValue(value, dataType)
	if err != nil {
		return literal
	}
	return result
}

func convertJSONValue(value []byte, dataType jsonparser.ValueType) (interface{}, error) {
	switch dataType {
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i), nil
			}
		}
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Array:
		result := []interface{}{}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			v, err := convertJSONValue(item, itemType)
			if err != nil {
				itemErr = err
				return
			}
			result = append(result, v)
		})
		if err != nil {
			return nil, err
		}
		return result, itemErr
	case jsonparser.Object:
		result := make(map[string]interface{})
		err := jsonparser.ObjectEach(value, func(key []byte, item []byte, itemType jsonparser.ValueType, _ int) error {
			v, err := convertJSONValue(item, itemType)
			if err != nil {
				return err
			}
			result[string(key)] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, errors.Errorf("unsupported parameter value type %v", dataType)
}
