package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateMemo(t *testing.T) {
	t.Parallel()

	t.Run("valid memo", func(t *testing.T) {
		if err := ValidateMemo("helped at the repair cafe"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("memo too short", func(t *testing.T) {
		err := ValidateMemo("abcd")
		if !errors.Is(err, ErrMemoTooShort) {
			t.Fatalf("expected ErrMemoTooShort, got %v", err)
		}
	})

	t.Run("memo too long", func(t *testing.T) {
		err := ValidateMemo(strings.Repeat("a", MemoMaxChars+1))
		if !errors.Is(err, ErrMemoTooLong) {
			t.Fatalf("expected ErrMemoTooLong, got %v", err)
		}
	})

	t.Run("bounds count characters not bytes", func(t *testing.T) {
		// Five two-byte characters: valid despite exceeding five bytes.
		if err := ValidateMemo("äääää"); err != nil {
			t.Fatalf("expected five multi-byte characters to pass, got %v", err)
		}

		// 255 two-byte characters: valid despite 510 bytes.
		if err := ValidateMemo(strings.Repeat("ä", MemoMaxChars)); err != nil {
			t.Fatalf("expected max-length multi-byte memo to pass, got %v", err)
		}

		if err := ValidateMemo("äää"); !errors.Is(err, ErrMemoTooShort) {
			t.Fatalf("expected ErrMemoTooShort for three characters, got %v", err)
		}
	})
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.NewFromFloat(100.25)); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	huge := decimal.RequireFromString(MaxAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("Member@Example.com"); err != nil {
		t.Fatalf("expected case-insensitive match to succeed, got %v", err)
	}

	for _, email := range []string{"", "no-at-sign", "user@", "@example.com"} {
		if err := ValidateEmail(email); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	if err := ValidateName("Ada Lovelace"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateName("   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for blank name, got %v", err)
	}

	if err := ValidateName(strings.Repeat("a", MaxNameLength+1)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for long name, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 25, 0},
		{10, 5, 10, 5},
		{500, -3, 100, 0},
	}

	for _, tt := range tests {
		limit, offset := ValidatePagination(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("ValidatePagination(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
