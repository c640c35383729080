package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type PortfolioService struct {
	portfolioRepo repository.PortfolioRepo
	activity      ActivityLog
}

func NewPortfolioService(repo repository.PortfolioRepo, activity ActivityLog) *PortfolioService {
	return &PortfolioService{portfolioRepo: repo, activity: activity}
}

// Get returns the stored document, or an empty baseline if nothing was saved yet.
func (s *PortfolioService) Get(ctx context.Context) (models.PortfolioData, error) {
	p, err := s.portfolioRepo.Load(ctx)
	if err != nil {
		return models.PortfolioData{}, err
	}
	if p.UpdatedAt.IsZero() {
		return baselinePortfolio(), nil
	}
	return withEmptySlices(p), nil
}

// Save validates, fills in missing ids and slugs, and replaces the whole document.
func (s *PortfolioService) Save(ctx context.Context, p models.PortfolioData) (models.PortfolioData, error) {
	if err := validate.Struct(p); err != nil {
		return models.PortfolioData{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := checkUniqueIDs(p); err != nil {
		return models.PortfolioData{}, err
	}

	p = withEmptySlices(p)
	assignIDs(&p)
	assignSlugs(p.Projects)
	p.UpdatedAt = time.Now().UTC()

	if err := s.portfolioRepo.Save(ctx, p); err != nil {
		return models.PortfolioData{}, err
	}

	s.activity.Record(ctx, EventPortfolioSave, "portfolio saved", map[string]any{
		"projects": len(p.Projects),
		"skills":   len(p.Skills),
	})
	return p, nil
}

// baselinePortfolio is served before the owner saves anything.
func baselinePortfolio() models.PortfolioData {
	return withEmptySlices(models.PortfolioData{})
}

// withEmptySlices keeps JSON output as [] rather than null for the SPA.
func withEmptySlices(p models.PortfolioData) models.PortfolioData {
	if p.Projects == nil {
		p.Projects = []models.Project{}
	}
	if p.Skills == nil {
		p.Skills = []models.Skill{}
	}
	if p.Experience == nil {
		p.Experience = []models.Experience{}
	}
	if p.Memories == nil {
		p.Memories = []models.Memory{}
	}
	if p.Notes == nil {
		p.Notes = []models.Note{}
	}
	return p
}

// checkUniqueIDs rejects a document that repeats a nested id within one collection.
// Empty ids are minted later and never collide.
func checkUniqueIDs(p models.PortfolioData) error {
	if err := uniqueIDs("project", p.Projects, func(v models.Project) string { return v.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("skill", p.Skills, func(v models.Skill) string { return v.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("experience", p.Experience, func(v models.Experience) string { return v.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("memory", p.Memories, func(v models.Memory) string { return v.ID }); err != nil {
		return err
	}
	return uniqueIDs("note", p.Notes, func(v models.Note) string { return v.ID })
}

func uniqueIDs[T any](kind string, items []T, idOf func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := idOf(item)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return invalidf("duplicate %s id %q", kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func assignIDs(p *models.PortfolioData) {
	for i := range p.Projects {
		if p.Projects[i].ID == "" {
			p.Projects[i].ID = uuid.NewString()
		}
	}
	for i := range p.Skills {
		if p.Skills[i].ID == "" {
			p.Skills[i].ID = uuid.NewString()
		}
	}
	for i := range p.Experience {
		if p.Experience[i].ID == "" {
			p.Experience[i].ID = uuid.NewString()
		}
	}
	for i := range p.Memories {
		if p.Memories[i].ID == "" {
			p.Memories[i].ID = uuid.NewString()
		}
	}
	now := time.Now().UTC()
	for i := range p.Notes {
		if p.Notes[i].ID == "" {
			p.Notes[i].ID = uuid.NewString()
		}
		if p.Notes[i].CreatedAt.IsZero() {
			p.Notes[i].CreatedAt = now
		}
	}
}

// assignSlugs derives missing slugs from titles and makes all slugs unique
// within the document by suffixing -2, -3, ...
func assignSlugs(projects []models.Project) {
	used := make(map[string]bool, len(projects))
	for i := range projects {
		base := projects[i].Slug
		if strings.TrimSpace(base) == "" {
			base = projects[i].Title
		}
		base = slug.Make(base)
		if base == "" {
			base = "project"
		}

		candidate := base
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		used[candidate] = true
		projects[i].Slug = candidate
	}
}
