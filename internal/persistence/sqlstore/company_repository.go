package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const companyColumns = `id, user_id, name, industry, size, description, logo, website,
	location, contact_person, social_links, verified, created_by, updated_by, created_at, updated_at`

// CompanyRepository implements persistence.CompanyRepository.
type CompanyRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCompanyRepository creates a new company profile repository.
func NewCompanyRepository(pool *ConnectionPool) *CompanyRepository {
	return &CompanyRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCompany inserts the profile and points the owning user at it in one
// transaction.
func (r *CompanyRepository) CreateCompany(ctx context.Context, company persistence.CompanyProfile) error {
	if company.ID == "" || company.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&company.CreatedAt, &company.UpdatedAt)

	docs, err := encodeCompanyDocs(company)
	if err != nil {
		return err
	}

	err = r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(ctx, tx, `
			INSERT INTO company_profiles (`+companyColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			company.ID,
			company.UserID,
			company.Name,
			company.Industry,
			company.Size,
			company.Description,
			company.Logo,
			company.Website,
			docs.location,
			docs.contact,
			docs.social,
			company.Verified,
			nullableString(company.CreatedBy),
			nullableString(company.UpdatedBy),
			formatTime(company.CreatedAt),
			formatTime(company.UpdatedAt),
		); err != nil {
			return err
		}

		result, err := r.helper.ExecTx(ctx, tx,
			`UPDATE users SET company_id = ?, updated_at = ? WHERE id = ?`,
			company.ID, formatTime(company.UpdatedAt), company.UserID)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	return r.mapper.MapError(err)
}

// UpdateCompany replaces the mutable columns of a profile. The owner never changes.
func (r *CompanyRepository) UpdateCompany(ctx context.Context, company persistence.CompanyProfile) error {
	if company.UpdatedAt.IsZero() {
		company.UpdatedAt = time.Now().UTC()
	}
	docs, err := encodeCompanyDocs(company)
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE company_profiles
		SET name = ?, industry = ?, size = ?, description = ?, logo = ?, website = ?,
			location = ?, contact_person = ?, social_links = ?, verified = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		company.Name,
		company.Industry,
		company.Size,
		company.Description,
		company.Logo,
		company.Website,
		docs.location,
		docs.contact,
		docs.social,
		company.Verified,
		nullableString(company.UpdatedBy),
		formatTime(company.UpdatedAt),
		company.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetCompany retrieves a profile by ID.
func (r *CompanyRepository) GetCompany(ctx context.Context, id string) (persistence.CompanyProfile, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+companyColumns+` FROM company_profiles WHERE id = ?`, id)
	company, err := scanCompany(row)
	if err != nil {
		return persistence.CompanyProfile{}, r.mapper.MapError(err)
	}
	return company, nil
}

// GetCompanyByUser retrieves the profile owned by userID.
func (r *CompanyRepository) GetCompanyByUser(ctx context.Context, userID string) (persistence.CompanyProfile, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+companyColumns+` FROM company_profiles WHERE user_id = ?`, userID)
	company, err := scanCompany(row)
	if err != nil {
		return persistence.CompanyProfile{}, r.mapper.MapError(err)
	}
	return company, nil
}

// ListCompanies returns all profiles ordered by name.
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]persistence.CompanyProfile, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+companyColumns+` FROM company_profiles ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	companies := make([]persistence.CompanyProfile, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return companies, nil
}

// DeleteCompany removes a profile and clears the owner's back-reference.
// Jobs or applications still pointing at the profile block the delete.
func (r *CompanyRepository) DeleteCompany(ctx context.Context, id string) error {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(ctx, tx, `UPDATE users SET company_id = NULL WHERE company_id = ?`, id); err != nil {
			return err
		}
		result, err := r.helper.ExecTx(ctx, tx, `DELETE FROM company_profiles WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	return r.mapper.MapError(err)
}

// CompanyStats counts jobs, applications and upcoming interviews for a company.
func (r *CompanyRepository) CompanyStats(ctx context.Context, companyID string, now time.Time) (persistence.CompanyStats, error) {
	var stats persistence.CompanyStats
	err := r.helper.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE company_id = ?),
			(SELECT COUNT(*) FROM applications WHERE company_id = ?),
			(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
				WHERE j.company_id = ? AND i.interview_date >= ?)`,
		companyID, companyID, companyID, formatTime(now),
	).Scan(&stats.JobsPosted, &stats.ApplicationsReceived, &stats.UpcomingInterviews)
	if err != nil {
		return persistence.CompanyStats{}, r.mapper.MapError(err)
	}
	return stats, nil
}

type companyDocs struct {
	location string
	contact  string
	social   string
}

func encodeCompanyDocs(company persistence.CompanyProfile) (companyDocs, error) {
	var (
		docs companyDocs
		err  error
	)
	if docs.location, err = encodeJSON("location", company.Location); err != nil {
		return docs, err
	}
	if docs.contact, err = encodeJSON("contact_person", company.ContactPerson); err != nil {
		return docs, err
	}
	if docs.social, err = encodeJSON("social_links", company.SocialLinks); err != nil {
		return docs, err
	}
	return docs, nil
}

func scanCompany(row rowScanner) (persistence.CompanyProfile, error) {
	var (
		company                   persistence.CompanyProfile
		location, contact, social string
		createdBy, updatedBy      sql.NullString
		createdAt, updatedAt      string
	)
	if err := row.Scan(
		&company.ID,
		&company.UserID,
		&company.Name,
		&company.Industry,
		&company.Size,
		&company.Description,
		&company.Logo,
		&company.Website,
		&location,
		&contact,
		&social,
		&company.Verified,
		&createdBy,
		&updatedBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.CompanyProfile{}, err
	}

	if err := decodeJSON("location", location, &company.Location); err != nil {
		return persistence.CompanyProfile{}, err
	}
	if err := decodeJSON("contact_person", contact, &company.ContactPerson); err != nil {
		return persistence.CompanyProfile{}, err
	}
	if err := decodeJSON("social_links", social, &company.SocialLinks); err != nil {
		return persistence.CompanyProfile{}, err
	}

	var err error
	company.CreatedBy = stringPtr(createdBy)
	company.UpdatedBy = stringPtr(updatedBy)
	if company.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.CompanyProfile{}, err
	}
	if company.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.CompanyProfile{}, err
	}
	return company, nil
}
