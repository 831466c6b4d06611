package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// ReportInput carries a new report. Exactly one of the three target fields
// must be set.
type ReportInput struct {
	PostID         *uint
	CommentID      *uint
	ReportedUserID *uint
	Reason         string
}

// ModerationService handles abuse reports and their review lifecycle.
type ModerationService struct {
	reports  repository.ReportRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository

	// isAdmin decides whether a user holds the admin role.
	isAdmin func(ctx context.Context, userID uint) (bool, error)
}

// NewModerationService creates a new moderation service
func NewModerationService(
	reports repository.ReportRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ModerationService {
	return &ModerationService{
		reports:  reports,
		posts:    posts,
		comments: comments,
		users:    users,
		isAdmin:  isAdmin,
	}
}

// Report files a new report against exactly one target. The target must
// exist and reports open in the pending state. An omitted reason is stored
// as "No reason provided".
func (s *ModerationService) Report(ctx context.Context, reporterID uint, input ReportInput) (*models.Report, error) {
	targets := 0
	for _, t := range []*uint{input.PostID, input.CommentID, input.ReportedUserID} {
		if t != nil {
			targets++
		}
	}
	if targets != 1 {
		return nil, models.NewInvalidOperationError("A report must target exactly one post, comment or user")
	}
	if input.Reason == "" {
		input.Reason = "No reason provided"
	}

	var target string
	switch {
	case input.PostID != nil:
		target = "post"
		if _, err := s.posts.GetByID(ctx, *input.PostID, reporterID); err != nil {
			return nil, err
		}
	case input.CommentID != nil:
		target = "comment"
		if _, err := s.comments.GetByID(ctx, *input.CommentID); err != nil {
			return nil, err
		}
	default:
		target = "user"
		if *input.ReportedUserID == reporterID {
			return nil, models.NewInvalidOperationError("Cannot report yourself")
		}
		if _, err := s.users.GetByID(ctx, *input.ReportedUserID); err != nil {
			return nil, err
		}
	}

	report := &models.Report{
		ReporterID:     reporterID,
		PostID:         input.PostID,
		CommentID:      input.CommentID,
		ReportedUserID: input.ReportedUserID,
		Reason:         input.Reason,
		Status:         models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	observability.ReportsFiled.WithLabelValues(target).Inc()
	return report, nil
}

// ListReports returns reports for review, admin only. An empty status lists
// all reports.
func (s *ModerationService) ListReports(ctx context.Context, callerID uint, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	admin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewForbiddenError("Only admins can list reports")
	}
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("Invalid report status")
	}
	return s.reports.List(ctx, status, limit, offset)
}

// ResolveReport moves a report to a new review state, admin only.
func (s *ModerationService) ResolveReport(ctx context.Context, callerID, reportID uint, status models.ReportStatus) (*models.Report, error) {
	admin, err := s.isAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewForbiddenError("Only admins can resolve reports")
	}
	if !status.Valid() || status == models.ReportStatusPending {
		return nil, models.NewValidationError("Invalid report status")
	}
	if err := s.reports.UpdateStatus(ctx, reportID, status); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, reportID)
}
