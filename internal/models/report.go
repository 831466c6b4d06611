package models

import (
	"time"
)

// ReportStatus is the review state of a moderation report.
type ReportStatus string

const (
	// ReportStatusPending is the initial state of a new report.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusReviewed marks a report an admin has looked at.
	ReportStatusReviewed ReportStatus = "reviewed"
	// ReportStatusResolved marks a report acted upon.
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusDismissed marks a report closed without action.
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Valid reports whether the status is one of the enumerated values.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Report is a flag raised against a post, a comment, or a user.
// Exactly one of PostID, CommentID and ReportedUserID is set; the service
// layer rejects anything else before the row is written.
type Report struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ReporterID     uint         `gorm:"not null;index" json:"reporter_id"`
	PostID         *uint        `gorm:"index" json:"post_id,omitempty"`
	CommentID      *uint        `gorm:"index" json:"comment_id,omitempty"`
	ReportedUserID *uint        `gorm:"index" json:"reported_user_id,omitempty"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Reporter     User     `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Post         *Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	Comment      *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"comment,omitempty"`
	ReportedUser *User    `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
}
