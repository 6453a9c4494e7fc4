package fields

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/goliatone/go-schemafields/pkg/node"
)

// NumberRange bounds numeric values. Nil bounds are not checked and NaN is
// always accepted. When both bounds on one side fail, the message names the
// tighter one.
type NumberRange struct {
	Min          *float64
	Max          *float64
	ExclusiveMin *float64
	ExclusiveMax *float64
}

// Validate implements node.Validator.
func (r NumberRange) Validate(n *node.Node, value any) error {
	number, ok := toFloat(value)
	if !ok || math.IsNaN(number) {
		return nil
	}
	if bound, failed := tighter(r.Min != nil && number < *r.Min, r.Min,
		r.ExclusiveMin != nil && number <= *r.ExclusiveMin, r.ExclusiveMin, math.Max); failed {
		return node.Invalidf(n, "%s is less than minimum value %s", formatNumber(value), formatFloat(bound))
	}
	if bound, failed := tighter(r.Max != nil && number > *r.Max, r.Max,
		r.ExclusiveMax != nil && number >= *r.ExclusiveMax, r.ExclusiveMax, math.Min); failed {
		return node.Invalidf(n, "%s is greater than maximum value %s", formatNumber(value), formatFloat(bound))
	}
	return nil
}

// tighter picks the failing bound to report; pick chooses between two.
func tighter(inclusiveFailed bool, inclusive *float64, exclusiveFailed bool, exclusive *float64, pick func(a, b float64) float64) (float64, bool) {
	switch {
	case inclusiveFailed && exclusiveFailed:
		return pick(*inclusive, *exclusive), true
	case inclusiveFailed:
		return *inclusive, true
	case exclusiveFailed:
		return *exclusive, true
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
	case uint64:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	default:
		return 0, false
	}
}

func formatNumber(value any) string {
	switch typed := value.(type) {
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	}
	number, _ := toFloat(value)
	return formatFloat(number)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
