package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// CompanyRepository provides SQL-backed company persistence
type CompanyRepository struct {
	DB *sql.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var c domain.Company
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, domain, linkedin_url, head_office, company_size, industry,
			website, logo_url, created_at, updated_at
		FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Domain, &c.LinkedinURL, &c.HeadOffice, &c.CompanySize,
			&c.Industry, &c.Website, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("company")
	}
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	return &c, nil
}

// Upsert inserts or updates a company keyed by ID. Empty incoming canonical
// fields never overwrite previously enriched values; non-empty incoming
// values win (last-write-wins per field).
func (r *CompanyRepository) Upsert(ctx context.Context, company *domain.Company) error {
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO companies (id, name, domain, linkedin_url, head_office, company_size,
			industry, website, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), companies.name),
			domain = COALESCE(NULLIF(EXCLUDED.domain, ''), companies.domain),
			linkedin_url = COALESCE(NULLIF(EXCLUDED.linkedin_url, ''), companies.linkedin_url),
			head_office = COALESCE(NULLIF(EXCLUDED.head_office, ''), companies.head_office),
			company_size = COALESCE(NULLIF(EXCLUDED.company_size, ''), companies.company_size),
			industry = COALESCE(NULLIF(EXCLUDED.industry, ''), companies.industry),
			website = COALESCE(NULLIF(EXCLUDED.website, ''), companies.website),
			logo_url = COALESCE(NULLIF(EXCLUDED.logo_url, ''), companies.logo_url),
			updated_at = EXCLUDED.updated_at`,
		company.ID, company.Name, company.Domain, company.LinkedinURL, company.HeadOffice,
		company.CompanySize, company.Industry, company.Website, company.LogoURL,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError(err)
	}

	return nil
}
