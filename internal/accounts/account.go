// Package accounts implements the on-device account store: registration,
// authentication with Terms-of-Service gating, profile and lesson-progress
// mutation, and the logged-in state machine driving the session façade.
package accounts

import "time"

// Lesson topics known to the trainer. Every account tracks an unlock level
// per topic.
const (
	TopicBrowseSafe    = "Browse Safe"
	TopicAvoidPhishing = "Avoid Phishing"
	TopicAvoidScams    = "Avoid Scams"
)

// Topics lists all known lesson topics.
var Topics = []string{TopicBrowseSafe, TopicAvoidPhishing, TopicAvoidScams}

// MaxLessonLevel is the per-topic progress ceiling. The lesson flows only
// ever unlock up to level 3.
const MaxLessonLevel = 3

// Account is one registered user. Username is unique case-insensitively and
// immutable after creation. All mutation goes through whole-record
// replacement in the repository, never partial in-place field updates.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	DateOfBirth  string `json:"dob"`

	// Progress maps a lesson topic to its unlock level. Levels never
	// decrease over the account's lifetime.
	Progress map[string]int `json:"progress"`

	// Append-only logs.
	CallHistory      []string `json:"callHistory"`
	ScamCheckHistory []string `json:"scamCheckHistory"`

	ProfileImageName string `json:"profileImageName,omitempty"`

	HasAcceptedToS         bool      `json:"hasAcceptedToS"`
	AccountCreationDate    time.Time `json:"accountCreationDate"`
	HasCompletedOnboarding bool      `json:"hasCompletedOnboarding"`
}

// DefaultProgress returns the starting progress for a new account: level 1
// for every known topic.
func DefaultProgress() map[string]int {
	p := make(map[string]int, len(Topics))
	for _, topic := range Topics {
		p[topic] = 1
	}
	return p
}

// IsLessonUnlocked reports whether the given lesson of a topic is reachable
// at the account's current progress.
func (a *Account) IsLessonUnlocked(topic string, lesson int) bool {
	return lesson <= a.Progress[topic]
}
