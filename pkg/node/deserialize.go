package node

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Deserialize coerces value according to the node kind and validates it.
// Constraint violations anywhere in the tree come back as one *Invalid. A
// nil result with a nil error means the value was absent and dropped.
func (n *Node) Deserialize(value any) (any, error) {
	out, _, err := n.deserialize(value)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// deserialize reports dropped=true when the value was absent and the missing
// policy removes it from the parent.
func (n *Node) deserialize(value any) (any, bool, error) {
	if value == nil {
		switch {
		case n.Missing.IsRequired():
			return nil, false, NewInvalid(n, "Required")
		case n.Missing.IsDrop(), n.Missing.IsDeferred():
			return nil, true, nil
		default:
			substitute, _ := n.Missing.Value()
			return substitute, false, nil
		}
	}

	var (
		out any
		err error
	)
	switch n.Kind {
	case KindSequence:
		out, err = n.deserializeSequence(value)
	case KindSet:
		out, err = n.deserializeSet(value)
	case KindMapping:
		out, err = n.deserializeMapping(value)
	default:
		out, err = n.coerceScalar(value)
	}
	if err != nil {
		return nil, false, err
	}

	if n.Validator != nil {
		if err := n.Validator.Validate(n, out); err != nil {
			return nil, false, n.adopt(err)
		}
	}

	if len(n.PostValidators) > 0 {
		var agg *Invalid
		for _, validator := range n.PostValidators {
			err := validator.Validate(n, out)
			if err == nil {
				continue
			}
			inv, ok := AsInvalid(err)
			if !ok {
				return nil, false, err
			}
			if agg == nil {
				agg = NewInvalid(n)
			}
			agg.Merge(inv)
		}
		if agg != nil {
			return nil, false, agg
		}
	}
	return out, false, nil
}

// adopt makes sure a validator error is addressed to n.
func (n *Node) adopt(err error) error {
	inv, ok := AsInvalid(err)
	if !ok {
		return err
	}
	if inv.Node == n.Name {
		return inv
	}
	wrapped := NewInvalid(n)
	wrapped.Merge(inv)
	return wrapped
}

func (n *Node) deserializeSequence(value any) (any, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, Invalidf(n, "%q is not iterable", display(value))
	}
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("node: sequence %q needs exactly one child, has %d", n.Name, len(n.Children))
	}
	child := n.Children[0]
	out := make([]any, 0, len(items))
	var agg *Invalid
	for idx, item := range items {
		result, dropped, err := child.deserialize(item)
		if err != nil {
			inv, ok := AsInvalid(err)
			if !ok {
				return nil, err
			}
			if agg == nil {
				agg = NewInvalid(n)
			}
			agg.Add(inv, idx)
			continue
		}
		if dropped {
			continue
		}
		out = append(out, result)
	}
	if agg != nil {
		return nil, agg
	}
	return out, nil
}

func (n *Node) deserializeSet(value any) (any, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, Invalidf(n, "%q is not iterable", display(value))
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		duplicate := false
		for _, existing := range out {
			if reflect.DeepEqual(existing, item) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, item)
		}
	}
	return out, nil
}

func (n *Node) deserializeMapping(value any) (any, error) {
	record, ok := value.(map[string]any)
	if !ok {
		return nil, Invalidf(n, "%q is not a mapping type", display(value))
	}
	out := make(map[string]any, len(n.Children))
	var agg *Invalid
	for _, child := range n.Children {
		result, dropped, err := child.deserialize(record[child.Name])
		if err != nil {
			inv, ok := AsInvalid(err)
			if !ok {
				return nil, err
			}
			if agg == nil {
				agg = NewInvalid(n)
			}
			agg.Add(inv, -1)
			continue
		}
		if dropped {
			continue
		}
		out[child.Name] = result
	}
	if agg != nil {
		return nil, agg
	}
	return out, nil
}

func (n *Node) coerceScalar(value any) (any, error) {
	switch n.Kind {
	case KindString:
		text, ok := value.(string)
		if !ok {
			return nil, Invalidf(n, "%q is not a string", display(value))
		}
		return text, nil
	case KindInteger:
		number, ok := toInteger(value)
		if !ok {
			return nil, Invalidf(n, "%q is not a number", display(value))
		}
		return number, nil
	case KindFloat:
		number, ok := toFloat(value)
		if !ok {
			return nil, Invalidf(n, "%q is not a number", display(value))
		}
		return number, nil
	case KindBoolean:
		return toBool(value), nil
	case KindDate:
		return parseTime(n, value, "Invalid date", "2006-01-02")
	case KindTime:
		return parseTime(n, value, "Invalid time", "15:04:05", "15:04:05.999999", "15:04")
	case KindDateTime:
		return parseTime(n, value, "Invalid date", time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02")
	default:
		return nil, fmt.Errorf("node: unknown kind %q", n.Kind)
	}
}

func parseTime(n *Node, value any, message string, layouts ...string) (any, error) {
	if stamp, ok := value.(time.Time); ok {
		return stamp, nil
	}
	text, ok := value.(string)
	if !ok {
		return nil, NewInvalid(n, message)
	}
	text = strings.TrimSpace(text)
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, nil
		}
	}
	return nil, NewInvalid(n, message)
}

func toSlice(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

func toInteger(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case float64:
		if math.IsNaN(typed) || typed < math.MinInt64 || typed >= math.MaxInt64 || typed != math.Trunc(typed) {
			return 0, false
		}
		return int64(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func toBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "false", "0", "off", "no":
			return false
		}
		return true
	default:
		if number, ok := toFloat(value); ok {
			return number != 0
		}
		return true
	}
}

func display(value any) string {
	return fmt.Sprintf("%v", value)
}
