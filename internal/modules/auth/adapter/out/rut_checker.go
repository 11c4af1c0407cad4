package out

import (
	"strings"

	authout "vecino/internal/modules/auth/port/out"
)

// RUTChecker validates the modulo-11 check digit of a Chilean RUT. Dots,
// spaces and the dash are ignored.
type RUTChecker struct{}

func NewRUTChecker() authout.IdentifierChecker {
	return RUTChecker{}
}

func (RUTChecker) Valid(identifier string) bool {
	clean := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(identifier))
	if len(clean) < 2 {
		return false
	}
	body, check := clean[:len(clean)-1], clean[len(clean)-1]
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		d := body[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	var want byte
	switch rest := 11 - sum%11; rest {
	case 11:
		want = '0'
	case 10:
		want = 'K'
	default:
		want = byte('0' + rest)
	}
	return check == want
}
