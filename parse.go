package tether

import (
	"fmt"
	"math"
	"strconv"
)

// ParseHostSpec converts a dynamically-typed host configuration value, such as
// one decoded from a configuration file, into a HostSpec.
//
// v may be nil, a string, a []string, a map[string]any describing a single
// endpoint, a []any containing strings and maps, or a value that is already a
// HostSpec. Any other value produces an error that wraps ErrInvalidHostConfig.
//
// Maps may contain the keys "host", "port", "scheme", "user", "password" and
// "path". The port may be a string or an integer. A float64 holding a whole
// number in the port range is accepted as an integer. All other keys are
// stored in the endpoint's attributes.
func ParseHostSpec(v any) (HostSpec, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case HostSpec:
		return v, nil
	case string:
		return Host(v), nil
	case []string:
		return Hosts(v...), nil
	case map[string]any:
		return parseEndpoint(v)
	case []any:
		list := make(HostList, 0, len(v))

		for i, elem := range v {
			var (
				s   HostSpec
				err error
			)

			switch elem := elem.(type) {
			case string:
				s = Host(elem)
			case Host:
				s = elem
			case Endpoint:
				s = elem
			case map[string]any:
				s, err = parseEndpoint(elem)
			default:
				err = fmt.Errorf(
					"%w: element %d of the host list is %s, expected a string or map",
					ErrInvalidHostConfig,
					i,
					describeValue(elem),
				)
			}

			if err != nil {
				return nil, err
			}

			list = append(list, s)
		}

		return list, nil
	default:
		return nil, fmt.Errorf(
			"%w: unsupported value (%s)",
			ErrInvalidHostConfig,
			describeValue(v),
		)
	}
}

// parseEndpoint builds an endpoint from a map of its fields.
func parseEndpoint(m map[string]any) (Endpoint, error) {
	var ep Endpoint

	for k, v := range m {
		var err error

		switch k {
		case "host":
			ep.Host, err = stringField(k, v)
		case "port":
			ep.Port, err = portField(v)
		case "scheme":
			ep.Scheme, err = stringField(k, v)
		case "user":
			ep.User, err = stringField(k, v)
		case "password":
			ep.Password, err = stringField(k, v)
		case "path":
			ep.Path, err = stringField(k, v)
		default:
			if ep.Attributes == nil {
				ep.Attributes = map[string]any{}
			}
			ep.Attributes[k] = v
		}

		if err != nil {
			return Endpoint{}, err
		}
	}

	return ep, nil
}

func stringField(k string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf(
			"%w: the %q field must be a string, got %s",
			ErrInvalidHostConfig,
			k,
			describeValue(v),
		)
	}

	return s, nil
}

// portField converts a port value to its string form. Integers, including
// integral float64 values in the port range, are formatted in decimal.
func portField(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		// JSON decoders produce float64 for all numbers.
		if v == math.Trunc(v) && v >= 0 && v <= math.MaxUint16 {
			return strconv.FormatUint(uint64(v), 10), nil
		}
	}

	return "", fmt.Errorf(
		"%w: the \"port\" field must be a string or integer, got %s",
		ErrInvalidHostConfig,
		describeValue(v),
	)
}
