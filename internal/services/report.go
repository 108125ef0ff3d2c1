package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/logging"
	"github.com/beaconsafety/beacon-server/internal/models"
)

// ReportService owns incident reports. Creating a report fans out a
// newReport notification to the reporter's friends and a friendReport
// alert to the listed safety contacts; commenting notifies the report
// owner.
type ReportService struct {
	store       docstore.Store
	identity    Identity
	profiles    ProfileServiceInterface
	friendships FriendshipServiceInterface
	notifier    NotificationServiceInterface
}

func NewReportService(
	store docstore.Store,
	identity Identity,
	profiles ProfileServiceInterface,
	friendships FriendshipServiceInterface,
	notifier NotificationServiceInterface,
) *ReportService {
	return &ReportService{
		store:       store,
		identity:    identity,
		profiles:    profiles,
		friendships: friendships,
		notifier:    notifier,
	}
}

func (s *ReportService) Create(ctx context.Context, params models.CreateReportParams) (*models.Report, error) {
	reporterID := s.identity.CurrentUserID(ctx)
	if reporterID == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(params.Category) == "" || strings.TrimSpace(params.Description) == "" {
		return nil, ErrInvalidInput
	}

	report := &models.Report{
		ID:            uuid.NewString(),
		ReporterID:    reporterID,
		Category:      strings.TrimSpace(params.Category),
		Description:   strings.TrimSpace(params.Description),
		Location:      strings.TrimSpace(params.Location),
		NotifyUserIDs: params.NotifyUserIDs,
		CreatedAt:     time.Now().UTC(),
	}
	fields, err := docstore.FieldsOf(report)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, colReports, report.ID, fields); err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	reporter, err := s.profiles.GetByID(ctx, reporterID)
	if err != nil {
		logging.Warn("Report created but reporter profile unavailable; skipping fan-out", map[string]interface{}{
			"report_id": report.ID,
			"error":     err.Error(),
		})
		return report, nil
	}

	friendIDs, err := s.friendships.FriendIDs(ctx, reporterID)
	if err != nil {
		logging.Warn("Report fan-out could not list friends", map[string]interface{}{
			"report_id": report.ID,
			"error":     err.Error(),
		})
	} else {
		s.notifier.NotifyNewReport(ctx, friendIDs, reporter, report.ID)
	}

	if len(report.NotifyUserIDs) > 0 {
		s.notifier.NotifyFriendReport(ctx, report.NotifyUserIDs, reporter, report.ID)
	}

	return report, nil
}

func (s *ReportService) GetByID(ctx context.Context, reportID string) (*models.Report, error) {
	doc, err := s.store.Get(ctx, colReports, reportID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	report := &models.Report{}
	if err := doc.DataTo(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) AddComment(ctx context.Context, reportID, text string) (*models.ReportComment, error) {
	userID := s.identity.CurrentUserID(ctx)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	report, err := s.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	comment := &models.ReportComment{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	fields, err := docstore.FieldsOf(comment)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, colReportComments, comment.ID, fields); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if report.ReporterID != userID {
		commenter, err := s.profiles.GetByID(ctx, userID)
		if err != nil {
			logging.Warn("Comment notification skipped; commenter profile unavailable", map[string]interface{}{
				"report_id": reportID,
				"error":     err.Error(),
			})
			return comment, nil
		}
		s.notifier.NotifyReportComment(ctx, report.ReporterID, commenter, reportID)
	}

	return comment, nil
}

func (s *ReportService) ListComments(ctx context.Context, reportID string) ([]models.ReportComment, error) {
	docs, err := s.store.Query(ctx, colReportComments, docstore.Eq("reportId", reportID))
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	comments := []models.ReportComment{}
	for _, doc := range docs {
		var c models.ReportComment
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}
