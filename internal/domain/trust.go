package domain

import "time"

// TrustLevel is an explicit user-set override for a sender.
type TrustLevel string

const (
	TrustTrusted TrustLevel = "trusted"
	TrustBlocked TrustLevel = "blocked"
	TrustNeutral TrustLevel = "neutral"
)

// TrustDesignation records the user's explicit trust decision for a sender.
// At most one designation exists per (user, sender) pair. The designation
// store is owned by profile management; the engine reads it only.
type TrustDesignation struct {
	UserID      string     `json:"user_id" db:"user_id"`
	SenderEmail string     `json:"sender_email" db:"sender_email"`
	TrustLevel  TrustLevel `json:"trust_level" db:"trust_level"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// NeutralTrust is the designation used when no explicit record exists.
func NeutralTrust(userID, senderEmail string) TrustDesignation {
	return TrustDesignation{UserID: userID, SenderEmail: senderEmail, TrustLevel: TrustNeutral}
}
