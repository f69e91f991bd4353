package models

import "time"

type FlagTargetType string

const (
	FlagTargetQuestion FlagTargetType = "Question"
	FlagTargetAnswer   FlagTargetType = "Answer"
	FlagTargetFeedback FlagTargetType = "Feedback"
)

// IsValidFlagTarget reports whether t names a flaggable content kind.
func IsValidFlagTarget(t FlagTargetType) bool {
	switch t {
	case FlagTargetQuestion, FlagTargetAnswer, FlagTargetFeedback:
		return true
	}
	return false
}

// ContentFlag is a moderation marker on a content item. Resolved is terminal:
// once set it never transitions back, and further resolve attempts are
// rejected. Version guards the resolve transition against concurrent writers.
type ContentFlag struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	TargetType FlagTargetType `json:"target_type" gorm:"not null;index;size:20"`
	TargetID   string         `json:"target_id" gorm:"not null;index;size:255"`
	FlaggedBy  string         `json:"flagged_by" gorm:"not null;size:255"`
	Reason     string         `json:"reason" gorm:"not null;type:text"`

	// ContentSnippet is captured from the content store at flag time so
	// moderators see what was flagged even if the item changes later.
	ContentSnippet string `json:"content_snippet" gorm:"type:text"`

	Resolved bool `json:"resolved" gorm:"not null;default:false;index"`
	Version  int  `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContentFlag) TableName() string {
	return "content_flags"
}
