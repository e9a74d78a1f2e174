package sqlstore

import (
	"context"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

const studentColumns = `id, user_id, bio, education, experience, skills, portfolio_links, resume_url, created_at, updated_at`

// StudentRepository implements persistence.StudentRepository.
type StudentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStudentRepository creates a new student profile repository.
func NewStudentRepository(pool *ConnectionPool) *StudentRepository {
	return &StudentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateStudent inserts a new student profile.
func (r *StudentRepository) CreateStudent(ctx context.Context, student persistence.StudentProfile) error {
	if student.ID == "" || student.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&student.CreatedAt, &student.UpdatedAt)

	docs, err := encodeStudentDocs(student)
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO student_profiles (`+studentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.UserID,
		student.Bio,
		docs[0], docs[1], docs[2], docs[3],
		student.ResumeURL,
		formatTime(student.CreatedAt),
		formatTime(student.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateStudent replaces the mutable columns of a profile.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student persistence.StudentProfile) error {
	if student.UpdatedAt.IsZero() {
		student.UpdatedAt = time.Now().UTC()
	}
	docs, err := encodeStudentDocs(student)
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE student_profiles
		SET bio = ?, education = ?, experience = ?, skills = ?, portfolio_links = ?, resume_url = ?, updated_at = ?
		WHERE id = ?`,
		student.Bio,
		docs[0], docs[1], docs[2], docs[3],
		student.ResumeURL,
		formatTime(student.UpdatedAt),
		student.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetStudent retrieves a profile by ID.
func (r *StudentRepository) GetStudent(ctx context.Context, id string) (persistence.StudentProfile, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+studentColumns+` FROM student_profiles WHERE id = ?`, id)
	student, err := scanStudent(row)
	if err != nil {
		return persistence.StudentProfile{}, r.mapper.MapError(err)
	}
	return student, nil
}

// GetStudentByUser retrieves the profile owned by userID.
func (r *StudentRepository) GetStudentByUser(ctx context.Context, userID string) (persistence.StudentProfile, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+studentColumns+` FROM student_profiles WHERE user_id = ?`, userID)
	student, err := scanStudent(row)
	if err != nil {
		return persistence.StudentProfile{}, r.mapper.MapError(err)
	}
	return student, nil
}

// ListStudents returns all profiles ordered by creation time.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]persistence.StudentProfile, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+studentColumns+` FROM student_profiles ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	students := make([]persistence.StudentProfile, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return students, nil
}

// DeleteStudent removes a profile by ID.
func (r *StudentRepository) DeleteStudent(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM student_profiles WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func encodeStudentDocs(student persistence.StudentProfile) ([4]string, error) {
	var (
		docs [4]string
		err  error
	)
	if docs[0], err = encodeJSON("education", student.Education); err != nil {
		return docs, err
	}
	if docs[1], err = encodeJSON("experience", student.Experience); err != nil {
		return docs, err
	}
	if docs[2], err = encodeJSON("skills", student.Skills); err != nil {
		return docs, err
	}
	if docs[3], err = encodeJSON("portfolio_links", student.PortfolioLinks); err != nil {
		return docs, err
	}
	return docs, nil
}

func scanStudent(row rowScanner) (persistence.StudentProfile, error) {
	var (
		student                                  persistence.StudentProfile
		education, experience, skills, portfolio string
		createdAt, updatedAt                     string
	)
	if err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.Bio,
		&education,
		&experience,
		&skills,
		&portfolio,
		&student.ResumeURL,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.StudentProfile{}, err
	}

	if err := decodeJSON("education", education, &student.Education); err != nil {
		return persistence.StudentProfile{}, err
	}
	if err := decodeJSON("experience", experience, &student.Experience); err != nil {
		return persistence.StudentProfile{}, err
	}
	if err := decodeJSON("skills", skills, &student.Skills); err != nil {
		return persistence.StudentProfile{}, err
	}
	if err := decodeJSON("portfolio_links", portfolio, &student.PortfolioLinks); err != nil {
		return persistence.StudentProfile{}, err
	}

	var err error
	if student.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.StudentProfile{}, err
	}
	if student.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.StudentProfile{}, err
	}
	return student, nil
}
