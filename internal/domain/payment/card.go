// Package payment validates payment cards. Validation is the only thing that
// happens here: no funds move.
package payment

import (
	"strconv"
	"strings"
	"time"
)

// Error indicates a failed card validation. It carries a human-readable
// message suitable for the API boundary.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

// Validator checks card numbers and expiry dates. The clock is injectable
// so expiry checks are deterministic in tests.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a Validator using the system clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt creates a Validator with a fixed clock.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// ProcessPayment validates the card number and expiry date, returning a
// *payment.Error describing the first failed check, or nil when both pass.
func (v *Validator) ProcessPayment(cardNumber, expiryDate string) error {
	if !IsValidCardNumber(cardNumber) {
		return &Error{Msg: "invalid card number: failed Luhn check"}
	}
	if !v.IsValidExpiryDate(expiryDate) {
		return &Error{Msg: "invalid or expired card: expiry date must not be in the past"}
	}
	return nil
}

// IsValidCardNumber reports whether raw contains a plausible card number.
// All non-digit characters are stripped first; the remaining digits must
// number between 13 and 19 and pass the Luhn checksum.
func IsValidCardNumber(raw string) bool {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) < 13 || len(s) > 19 {
		return false
	}
	return luhnCheck(s)
}

// luhnCheck runs the Luhn checksum over a digits-only string: every second
// digit from the right is doubled, digits above 9 have 9 subtracted, and the
// grand sum must be divisible by 10.
func luhnCheck(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IsValidExpiryDate reports whether raw is a well-formed "MM/YY" expiry that
// has not passed. A card stays valid through the last day of its expiry
// month. Malformed input yields false, never an error.
func (v *Validator) IsValidExpiryDate(raw string) bool {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return false
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 0 {
		return false
	}

	// First day of the month after expiry; the card is valid strictly
	// before that instant.
	expiryEnd := time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	today := v.now().UTC().Truncate(24 * time.Hour)
	return today.Before(expiryEnd)
}
