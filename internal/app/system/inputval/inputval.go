// Package inputval checks decoded request bodies against validate struct tags.
//
//	type statusInput struct {
//	    Email  string `json:"email" validate:"required"`
//	    Status string `json:"status" validate:"required,userstatus"`
//	}
//
// Handlers decide the wording of their own error responses, so a Result
// reports which rules failed rather than formatted messages.
package inputval

import (
	"net/mail"
	"strings"
	"sync"

	"github.com/dalemusser/papilloncast/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Rule names reported in Failure.Rule. userstatus is registered here on top
// of pantry/validate's built-ins.
const (
	RuleRequired   = "required"
	RuleUserStatus = "userstatus"
)

// Failure is one field that did not pass a rule.
type Failure struct {
	Field string
	Rule  string
}

// Result lists the failed checks for one value.
type Result struct {
	Failures []Failure
}

// OK reports whether every check passed.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

// Failed reports whether any field failed rule.
func (r *Result) Failed(rule string) bool {
	for _, f := range r.Failures {
		if f.Rule == rule {
			return true
		}
	}
	return false
}

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New()
		validator.RegisterRuleFunc(RuleUserStatus, func(v any) bool {
			s, ok := v.(string)
			return ok && models.IsValidStatus(s)
		}, RuleUserStatus)
	})
	return validator
}

// Validate runs the validate tags on s, a struct or pointer to one.
func Validate(s any) *Result {
	res := &Result{}
	err := getValidator().Struct(s)
	if err == nil {
		return res
	}
	errs, ok := err.(validate.Errors)
	if !ok {
		res.Failures = append(res.Failures, Failure{Rule: "invalid"})
		return res
	}
	for _, e := range errs {
		res.Failures = append(res.Failures, Failure{Field: e.Field, Rule: e.Rule})
	}
	return res
}

// IsValidEmail reports whether email is a bare RFC 5322 address. Display-name
// forms such as "Ann <a@x.com>" are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
