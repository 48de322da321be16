package forms

import (
	"regexp"
	"strconv"
	"strings"
)

// emailPattern is the address shape browsers and form libraries accept: a dotted domain is not required.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Rule checks one field and returns an error message, or "" when the value passes.
//
// values holds every field of the form so rules can compare fields.
type Rule func(value string, values map[string]string) string

// Field binds rules to a named field. Rules run in order and the first failure wins.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered set of field rules.
type Schema []Field

// Result is the outcome of validating a set of values.
type Result struct {
	Valid  bool
	Errors map[string]string // field name to its first failing message
}

// Validate runs every rule against values.
func (s Schema) Validate(values map[string]string) Result {
	res := Result{Valid: true, Errors: map[string]string{}}
	for _, f := range s {
		v := values[f.Name]
		for _, rule := range f.Rules {
			if msg := rule(v, values); msg != "" {
				res.Errors[f.Name] = msg
				res.Valid = false
				break
			}
		}
	}
	return res
}

// Required fails on empty values. Whitespace counts as a value.
func Required(msg string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" {
			return msg
		}
		return ""
	}
}

// Email fails on values that are not a bare address. Empty values pass; pair with [Required].
func Email(msg string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" || emailPattern.MatchString(v) {
			return ""
		}
		return msg
	}
}

// MatchField fails when the value differs from the named field.
func MatchField(other, msg string) Rule {
	return func(v string, values map[string]string) string {
		if v != values[other] {
			return msg
		}
		return ""
	}
}

// PositiveInt fails unless the value parses as an integer greater than zero. Empty values pass.
func PositiveInt(msg string) Rule {
	return func(v string, _ map[string]string) string {
		if v == "" {
			return ""
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return msg
		}
		return ""
	}
}
