package domain

// Category is the mailbox-provider classification of a message.
type Category string

const (
	CategoryPrimary     Category = "primary"
	CategoryPromotional Category = "promotional"
	CategorySocial      Category = "social"
	CategoryUpdates     Category = "updates"
	CategoryForums      Category = "forums"
	CategoryUnknown     Category = "unknown"
)

// PlatformSignals are the classification hints the mail provider attaches to
// a message. They are partially trustworthy: useful as score adjustments,
// never authoritative on their own.
type PlatformSignals struct {
	IsStarred          bool     `json:"is_starred"`
	IsFlaggedImportant bool     `json:"is_flagged_important"`
	Category           Category `json:"category"`
	HasUnsubscribeLink bool     `json:"has_unsubscribe_link"`
}
