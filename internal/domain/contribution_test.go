package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestContribution_Validate(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		memo        string
		expectError error
	}{
		{
			name:        "valid contribution",
			amount:      decimal.NewFromInt(100),
			memo:        "planted trees in the community garden",
			expectError: nil,
		},
		{
			name:        "zero amount",
			amount:      decimal.Zero,
			memo:        "planted trees",
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromInt(-10),
			memo:        "planted trees",
			expectError: ErrInvalidAmount,
		},
		{
			name:        "memo too short",
			amount:      decimal.NewFromInt(100),
			memo:        "abc",
			expectError: ErrMemoTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contribution{
				Amount: tt.amount,
				Memo:   tt.memo,
			}

			err := c.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestContribution_CanConfirm(t *testing.T) {
	tests := []struct {
		name        string
		status      ContributionStatus
		userID      string
		moderatorID string
		expectError error
	}{
		{
			name:        "pending by another moderator",
			status:      ContributionStatusPending,
			userID:      "user-1",
			moderatorID: "mod-1",
			expectError: nil,
		},
		{
			name:        "already confirmed",
			status:      ContributionStatusConfirmed,
			userID:      "user-1",
			moderatorID: "mod-1",
			expectError: ErrContributionConfirmed,
		},
		{
			name:        "already denied",
			status:      ContributionStatusDenied,
			userID:      "user-1",
			moderatorID: "mod-1",
			expectError: ErrContributionDenied,
		},
		{
			name:        "deleted",
			status:      ContributionStatusDeleted,
			userID:      "user-1",
			moderatorID: "mod-1",
			expectError: ErrContributionNotPending,
		},
		{
			name:        "moderator confirms own contribution",
			status:      ContributionStatusPending,
			userID:      "mod-1",
			moderatorID: "mod-1",
			expectError: ErrSelfConfirmation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contribution{
				UserID: tt.userID,
				Status: tt.status,
			}

			err := c.CanConfirm(tt.moderatorID)

			if err != tt.expectError {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}
