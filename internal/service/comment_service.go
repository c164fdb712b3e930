package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "portal/internal/errors"
	"portal/internal/model"
	"portal/internal/repository"
)

// CommentService appends and lists report comments. Comments carry no
// visibility scoping; any caller who knows a report id may read or write.
type CommentService interface {
	AddComment(ctx context.Context, reportID uuid.UUID, email, text string) (*model.Comment, error)
	ListComments(ctx context.Context, reportID uuid.UUID) ([]model.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reportRepo  repository.ReportRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository, reportRepo repository.ReportRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reportRepo:  reportRepo,
	}
}

// AddComment appends a comment to an existing report.
func (s *commentService) AddComment(ctx context.Context, reportID uuid.UUID, email, text string) (*model.Comment, error) {
	email = normalizeEmail(email)
	text = strings.TrimSpace(text)
	if email == "" || text == "" {
		return nil, apperrors.ErrMissingFields
	}

	if _, err := s.reportRepo.FindByID(ctx, reportID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}

	comment := &model.Comment{
		ReportID:  reportID,
		UserEmail: email,
		Text:      text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a report's comments, newest first.
func (s *commentService) ListComments(ctx context.Context, reportID uuid.UUID) ([]model.Comment, error) {
	return s.commentRepo.ListByReport(ctx, reportID)
}
