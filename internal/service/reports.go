package service

import (
	"context"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/google/uuid"
)

const maxReportDescriptionLen = 5000

type ReportService struct {
	reportRepo repository.ReportRepo
	activity   ActivityLog
}

func NewReportService(repo repository.ReportRepo, activity ActivityLog) *ReportService {
	return &ReportService{reportRepo: repo, activity: activity}
}

func validReportType(t string) bool {
	switch t {
	case models.ReportTypeBug, models.ReportTypeContent, models.ReportTypeAbuse, models.ReportTypeOther:
		return true
	}
	return false
}

func validReportStatus(s string) bool {
	return s == models.ReportStatusOpen || s == models.ReportStatusResolved
}

func (s *ReportService) Create(ctx context.Context, in ReportInput) (models.Report, error) {
	typ := strings.ToLower(strings.TrimSpace(in.Type))
	if !validReportType(typ) {
		return models.Report{}, invalidf("type must be one of bug, content, abuse, other")
	}
	desc, err := cleanText("description", in.Description, 1, maxReportDescriptionLen)
	if err != nil {
		return models.Report{}, err
	}
	email := strings.TrimSpace(in.ReporterEmail)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return models.Report{}, invalidf("reporter_email is not valid")
		}
	}

	now := time.Now().UTC()
	r := models.Report{
		ID:            uuid.NewString(),
		Type:          typ,
		Description:   desc,
		Page:          strings.TrimSpace(in.Page),
		ReporterEmail: email,
		Status:        models.ReportStatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reportRepo.Create(ctx, r); err != nil {
		return models.Report{}, err
	}
	s.activity.Record(ctx, EventReportCreate, "report filed", map[string]any{"id": r.ID, "type": r.Type})
	return r, nil
}

func (s *ReportService) List(ctx context.Context, status string) ([]models.Report, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !validReportStatus(status) {
		return nil, invalidf("unknown report status %q", status)
	}
	return s.reportRepo.List(ctx, status)
}

func (s *ReportService) SetStatus(ctx context.Context, id, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validReportStatus(status) {
		return invalidf("status must be open or resolved")
	}
	if err := s.reportRepo.UpdateStatus(ctx, id, status, time.Now().UTC()); err != nil {
		return err
	}
	s.activity.Record(ctx, EventReportStatus, "report status changed", map[string]any{"id": id, "status": status})
	return nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, EventReportDelete, "report deleted", map[string]any{"id": id})
	return nil
}
