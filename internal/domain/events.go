package domain

import "time"

// Event types
const (
	EventTypeContributionCreated   = "contribution.created"
	EventTypeContributionConfirmed = "contribution.confirmed"
	EventTypeContributionDenied    = "contribution.denied"
	EventTypeContributionDeleted   = "contribution.deleted"
	EventTypeTransferSent          = "transfer.sent"
	EventTypeTransferReceived      = "transfer.received"
	EventTypeLinkCreated           = "link.created"
	EventTypeLinkRedeemed          = "link.redeemed"
	EventTypeUserCreated           = "user.created"
)

// Aggregate types
const (
	AggregateTypeContribution = "contribution"
	AggregateTypeEntry        = "entry"
	AggregateTypeLink         = "link"
	AggregateTypeUser         = "user"
)

// OutboxEvent represents an event to be published. Rows are written in the
// same database transaction as the ledger mutation they describe; a poller
// publishes them asynchronously afterwards.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ContributionConfirmedEvent payload
type ContributionConfirmedEvent struct {
	ContributionID string `json:"contribution_id"`
	UserID         string `json:"user_id"`
	ModeratorID    string `json:"moderator_id"`
	EntryID        string `json:"entry_id"`
	Amount         string `json:"amount"`
}

// TransferSentEvent payload
type TransferSentEvent struct {
	SendEntryID    string `json:"send_entry_id"`
	ReceiveEntryID string `json:"receive_entry_id"`
	SenderID       string `json:"sender_id"`
	RecipientID    string `json:"recipient_id"`
	Amount         string `json:"amount"`
	LinkID         string `json:"link_id,omitempty"`
}

// LinkRedeemedEvent payload
type LinkRedeemedEvent struct {
	LinkID     string `json:"link_id"`
	SenderID   string `json:"sender_id"`
	RedeemerID string `json:"redeemer_id"`
	Amount     string `json:"amount"`
}
