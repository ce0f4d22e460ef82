package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrMemoTooShort   = errors.New("memo text is too short")
	ErrMemoTooLong    = errors.New("memo text is too long")
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidName    = errors.New("invalid user name")
)

// Validation constants
const (
	MemoMinChars  = 5
	MemoMaxChars  = 255
	MaxNameLength = 255
	// MaxAmount bounds a single contribution or transfer
	MaxAmount = "1000000000"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateMemo validates memo length bounds. Bounds are character counts,
// not bytes, so multi-byte text is not over-counted.
func ValidateMemo(memo string) error {
	chars := utf8.RuneCountInString(memo)

	if chars < MemoMinChars {
		return fmt.Errorf("%w: %d < %d characters", ErrMemoTooShort, chars, MemoMinChars)
	}

	if chars > MemoMaxChars {
		return fmt.Errorf("%w: %d > %d characters", ErrMemoTooLong, chars, MemoMaxChars)
	}

	return nil
}

// ValidateAmount validates a contribution, transfer or link amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateName validates a user display name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 25

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
