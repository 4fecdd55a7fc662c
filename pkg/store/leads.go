package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// LeadRepository provides SQL-backed lead persistence
type LeadRepository struct {
	DB *sql.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, email, first_name, last_name, linkedin_url, company_id,
	enrichment_status, likelihood, enriched_data, created_at, updated_at`

// Create inserts a new lead
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.EnrichmentStatus == "" {
		lead.EnrichmentStatus = domain.EnrichmentNotStarted
	}

	data, err := json.Marshal(orEmpty(lead.EnrichedData))
	if err != nil {
		return domain.NewStorageError(err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, first_name, last_name, linkedin_url, company_id,
			enrichment_status, likelihood, enriched_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lead.ID, lead.Name, lead.Email, lead.FirstName, lead.LastName, lead.LinkedinURL,
		lead.CompanyID, lead.EnrichmentStatus, lead.Likelihood, string(data),
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError(err)
	}

	return nil
}

// GetByID retrieves a lead by ID
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// GetByEmail retrieves a lead by email address
func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE email = $1`, email)
	return scanLead(row)
}

// ListByIDs retrieves the leads matching the given IDs; missing IDs are
// simply absent from the result
func (r *LeadRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListByEnrichmentStatus retrieves up to limit leads with the given status,
// oldest first so stale leads are picked up before fresh ones
func (r *LeadRepository) ListByEnrichmentStatus(ctx context.Context, status string, limit int) ([]*domain.Lead, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE enrichment_status = $1 ORDER BY created_at ASC LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// UpdateEnrichmentStatus advances a lead's enrichment status
func (r *LeadRepository) UpdateEnrichmentStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET enrichment_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return domain.NewStorageError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError(err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("lead")
	}

	return nil
}

// SaveEnrichmentResult writes the enrichment outcome (status, likelihood,
// vendor leftover bag) in a single update. Writing the same payload twice
// yields the same stored row.
func (r *LeadRepository) SaveEnrichmentResult(ctx context.Context, id, status string, likelihood *float64, enrichedData map[string]any) error {
	data, err := json.Marshal(orEmpty(enrichedData))
	if err != nil {
		return domain.NewStorageError(err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET enrichment_status = $1, likelihood = $2, enriched_data = $3, updated_at = $4
		WHERE id = $5`,
		status, likelihood, string(data), time.Now().UTC(), id)
	if err != nil {
		return domain.NewStorageError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError(err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("lead")
	}

	return nil
}

// CountByEnrichmentStatus returns lead counts grouped by enrichment status
func (r *LeadRepository) CountByEnrichmentStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT enrichment_status, COUNT(*) FROM leads GROUP BY enrichment_status`)
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.NewStorageError(err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var l domain.Lead
	var likelihood sql.NullFloat64
	var data string

	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.FirstName, &l.LastName, &l.LinkedinURL,
		&l.CompanyID, &l.EnrichmentStatus, &likelihood, &data, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("lead")
	}
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	if likelihood.Valid {
		l.Likelihood = &likelihood.Float64
	}
	if err := json.Unmarshal([]byte(data), &l.EnrichedData); err != nil {
		return nil, domain.NewStorageError(err)
	}

	return &l, nil
}

func collectLeads(rows *sql.Rows) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(err)
	}
	return leads, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
