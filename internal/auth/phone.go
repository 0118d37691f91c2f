package auth

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var phoneValidate = validator.New()

// NormalizePhone converts user input to E.164. Russian numbers written with a
// leading 8 are rewritten to +7. It returns false for anything that is not a phone number.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}

	phone := b.String()
	if !strings.HasPrefix(phone, "+") {
		if len(phone) == 11 && phone[0] == '8' {
			phone = "7" + phone[1:]
		}
		phone = "+" + phone
	}

	if err := phoneValidate.Var(phone, "required,e164"); err != nil {
		return "", false
	}
	return phone, true
}
