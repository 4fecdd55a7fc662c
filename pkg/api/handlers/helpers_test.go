package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// newTestEchoWithValidator creates an Echo instance with validator configured
func newTestEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	return e
}

type memLeadStore struct {
	mu    sync.Mutex
	leads map[string]*domain.Lead
	fail  bool
}

func newMemLeadStore(leads ...*domain.Lead) *memLeadStore {
	s := &memLeadStore{leads: make(map[string]*domain.Lead)}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *memLeadStore) Create(ctx context.Context, lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return domain.NewStorageError(errors.New("write refused"))
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *memLeadStore) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.NewNotFoundError("lead")
	}
	copied := *lead
	return &copied, nil
}

func (s *memLeadStore) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lead := range s.leads {
		if lead.Email == email {
			copied := *lead
			return &copied, nil
		}
	}
	return nil, domain.NewNotFoundError("lead")
}

func (s *memLeadStore) ListByIDs(ctx context.Context, ids []string) ([]*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Lead
	for _, id := range ids {
		if lead, ok := s.leads[id]; ok {
			copied := *lead
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memLeadStore) ListByEnrichmentStatus(ctx context.Context, status string, limit int) ([]*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Lead
	for _, lead := range s.leads {
		if lead.EnrichmentStatus == status && len(out) < limit {
			copied := *lead
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memLeadStore) UpdateEnrichmentStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return domain.NewNotFoundError("lead")
	}
	lead.EnrichmentStatus = status
	return nil
}

func (s *memLeadStore) SaveEnrichmentResult(ctx context.Context, id, status string, likelihood *float64, enrichedData map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return domain.NewStorageError(errors.New("write refused"))
	}
	lead, ok := s.leads[id]
	if !ok {
		return domain.NewNotFoundError("lead")
	}
	lead.EnrichmentStatus = status
	lead.Likelihood = likelihood
	lead.EnrichedData = enrichedData
	return nil
}

func (s *memLeadStore) CountByEnrichmentStatus(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, lead := range s.leads {
		counts[lead.EnrichmentStatus]++
	}
	return counts, nil
}

type memCompanyStore struct {
	mu        sync.Mutex
	companies map[string]*domain.Company
}

func newMemCompanyStore(companies ...*domain.Company) *memCompanyStore {
	s := &memCompanyStore{companies: make(map[string]*domain.Company)}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *memCompanyStore) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, domain.NewNotFoundError("company")
	}
	copied := *company
	return &copied, nil
}

func (s *memCompanyStore) Upsert(ctx context.Context, company *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *company
	s.companies[company.ID] = &copied
	return nil
}
