package service

import (
	"context"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/google/uuid"
)

const (
	maxLeadNameLen    = 120
	maxLeadMessageLen = 5000
	defaultLeadSource = "contact-form"
)

type LeadService struct {
	leadRepo repository.LeadRepo
	activity ActivityLog
}

func NewLeadService(repo repository.LeadRepo, activity ActivityLog) *LeadService {
	return &LeadService{leadRepo: repo, activity: activity}
}

func validLeadStatus(s string) bool {
	switch s {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusClosed:
		return true
	}
	return false
}

func (s *LeadService) Create(ctx context.Context, in LeadInput) (models.Lead, error) {
	name, err := cleanText("name", in.Name, 1, maxLeadNameLen)
	if err != nil {
		return models.Lead{}, err
	}
	email := strings.TrimSpace(in.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return models.Lead{}, invalidf("a valid email is required")
	}
	message, err := cleanText("message", in.Message, 0, maxLeadMessageLen)
	if err != nil {
		return models.Lead{}, err
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = defaultLeadSource
	}

	l := models.Lead{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Company:   strings.TrimSpace(in.Company),
		Message:   message,
		Source:    source,
		Status:    models.LeadStatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.leadRepo.Create(ctx, l); err != nil {
		return models.Lead{}, err
	}
	s.activity.Record(ctx, EventLeadCreate, "lead received", map[string]any{"id": l.ID, "source": l.Source})
	return l, nil
}

func (s *LeadService) List(ctx context.Context, status string) ([]models.Lead, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !validLeadStatus(status) {
		return nil, invalidf("unknown lead status %q", status)
	}
	return s.leadRepo.List(ctx, status)
}

func (s *LeadService) SetStatus(ctx context.Context, id, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validLeadStatus(status) {
		return invalidf("status must be one of new, contacted, closed")
	}
	if err := s.leadRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.activity.Record(ctx, EventLeadStatus, "lead status changed", map[string]any{"id": id, "status": status})
	return nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, EventLeadDelete, "lead deleted", map[string]any{"id": id})
	return nil
}
