package node

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validator checks a deserialized value. Constraint violations are reported
// as *Invalid; any other error aborts deserialization.
type Validator interface {
	Validate(n *Node, value any) error
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(n *Node, value any) error

// Validate calls the underlying function.
func (fn ValidatorFunc) Validate(n *Node, value any) error {
	return fn(n, value)
}

// All runs every validator and merges their violations into one error.
func All(validators ...Validator) Validator {
	return ValidatorFunc(func(n *Node, value any) error {
		var agg *Invalid
		for _, validator := range validators {
			if validator == nil {
				continue
			}
			err := validator.Validate(n, value)
			if err == nil {
				continue
			}
			inv, ok := AsInvalid(err)
			if !ok {
				return err
			}
			if agg == nil {
				agg = NewInvalid(n)
			}
			agg.Merge(inv)
		}
		if agg == nil {
			return nil
		}
		return agg
	})
}

// Length bounds the length of strings (in runes) and sequences. A negative
// bound is not checked.
func Length(min, max int) Validator {
	return ValidatorFunc(func(n *Node, value any) error {
		size, ok := lengthOf(value)
		if !ok {
			return nil
		}
		if min >= 0 && size < min {
			return Invalidf(n, "Shorter than minimum length %d", min)
		}
		if max >= 0 && size > max {
			return Invalidf(n, "Longer than maximum length %d", max)
		}
		return nil
	})
}

func lengthOf(value any) (int, bool) {
	switch typed := value.(type) {
	case string:
		return utf8.RuneCountInString(typed), true
	case []any:
		return len(typed), true
	case map[string]any:
		return len(typed), true
	case nil:
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// Regex requires strings to contain a match for pattern.
func Regex(pattern string) (Validator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("node: invalid pattern %q: %w", pattern, err)
	}
	return ValidatorFunc(func(n *Node, value any) error {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		if !re.MatchString(text) {
			return NewInvalid(n, "String does not match expected pattern")
		}
		return nil
	}), nil
}

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%!#$&'*+\-/=?^` + "`" + `{|}~()]+@[A-Z0-9]+([.-][A-Z0-9]+)*\.[A-Z]{2,22}$`)

// Email requires a plausible email address.
func Email() Validator {
	return ValidatorFunc(func(n *Node, value any) error {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		if !emailPattern.MatchString(text) {
			return NewInvalid(n, "Invalid email address")
		}
		return nil
	})
}

// UUID requires a string parseable as a UUID.
func UUID() Validator {
	return ValidatorFunc(func(n *Node, value any) error {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		if _, err := uuid.Parse(text); err != nil {
			return NewInvalid(n, "Invalid UUID string")
		}
		return nil
	})
}

// URL requires an absolute URL with scheme and host.
func URL() Validator {
	return ValidatorFunc(func(n *Node, value any) error {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		parsed, err := url.ParseRequestURI(text)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return NewInvalid(n, "Must be a URL")
		}
		return nil
	})
}
