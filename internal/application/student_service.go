package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const maxBioLength = 500

var studentRepoErrors = repoErrors{duplicate: "user already has a student profile"}

// StudentService orchestrates validation, authorization, and persistence for student profiles.
type StudentService struct {
	students    StudentRepository
	users       UserLookup
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewStudentService constructs a student service with the provided dependencies.
func NewStudentService(students StudentRepository, users UserLookup, idGenerator func() string, now func() time.Time) *StudentService {
	return NewStudentServiceWithLogger(students, users, idGenerator, now, nil)
}

// NewStudentServiceWithLogger constructs a student service with a specified logger.
func NewStudentServiceWithLogger(students StudentRepository, users UserLookup, idGenerator func() string, now func() time.Time, logger *slog.Logger) *StudentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StudentService{students: students, users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *StudentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StudentService", operation, attrs...)
}

// CreateStudent persists a profile for the calling student, or for the
// named student user when an administrator calls it.
func (s *StudentService) CreateStudent(ctx context.Context, params CreateStudentParams) (student StudentProfile, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateStudent", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create student", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("student_id", student.ID).InfoContext(ctx, "student created")
	}()

	if !params.Principal.HasRole(RoleStudent, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	input := normalizeStudentInput(params.Input)
	if params.Principal.Role == RoleStudent {
		input.UserID = params.Principal.UserID
	}

	vErr := validateStudentInput(input)
	if input.UserID == "" {
		vErr.add("user", "user is required")
	} else if params.Principal.IsAdmin() && s.users != nil {
		owner, lookupErr := s.users.GetUser(ctx, input.UserID)
		switch {
		case lookupErr != nil:
			vErr.add("user", "user does not exist")
		case owner.Role != RoleStudent:
			vErr.add("user", "user must have the student role")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	student = studentFromInput(StudentProfile{ID: s.idGenerator(), UserID: input.UserID, CreatedAt: now}, input)
	student.UpdatedAt = now

	student, err = s.students.CreateStudent(ctx, student)
	err = studentRepoErrors.mapError(err)
	return
}

// GetStudent returns a single profile to any authenticated caller.
func (s *StudentService) GetStudent(ctx context.Context, principal Principal, studentID string) (student StudentProfile, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	student, err = s.students.GetStudent(ctx, studentID)
	if err != nil {
		err = studentRepoErrors.mapError(err)
		s.loggerWith(ctx, "GetStudent", "principal_id", principal.UserID, "student_id", studentID).
			ErrorContext(ctx, "failed to load student", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// ListStudents returns every profile to administrators and companies.
func (s *StudentService) ListStudents(ctx context.Context, principal Principal) (students []StudentProfile, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListStudents", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list students", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(students)).InfoContext(ctx, "students listed")
	}()

	if !principal.HasRole(RoleAdmin, RoleCompany) {
		err = ErrUnauthorized
		return
	}

	students, err = s.students.ListStudents(ctx)
	return
}

// UpdateStudent replaces the editable fields of a profile. Students may only
// edit their own profile.
func (s *StudentService) UpdateStudent(ctx context.Context, params UpdateStudentParams) (student StudentProfile, err error) {
	if s == nil || s.students == nil {
		err = fmt.Errorf("student repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateStudent",
		"principal_id", params.Principal.UserID,
		"student_id", params.StudentID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update student", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "student updated")
	}()

	if !params.Principal.HasRole(RoleStudent, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing StudentProfile
	existing, err = s.students.GetStudent(ctx, params.StudentID)
	if err != nil {
		err = studentRepoErrors.mapError(err)
		return
	}
	if params.Principal.Role == RoleStudent && existing.UserID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}

	input := normalizeStudentInput(params.Input)
	if vErr := validateStudentInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := studentFromInput(existing, input)
	updated.UpdatedAt = s.now()

	student, err = s.students.UpdateStudent(ctx, updated)
	err = studentRepoErrors.mapError(err)
	return
}

// DeleteStudent removes a profile for administrators.
func (s *StudentService) DeleteStudent(ctx context.Context, principal Principal, studentID string) error {
	if s == nil || s.students == nil {
		return fmt.Errorf("student repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteStudent",
		"principal_id", principal.UserID,
		"student_id", studentID,
	)

	if err := s.students.DeleteStudent(ctx, studentID); err != nil {
		err = studentRepoErrors.mapError(err)
		logger.ErrorContext(ctx, "failed to delete student", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "student deleted")
	return nil
}

func normalizeStudentInput(input StudentInput) StudentInput {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Bio = strings.TrimSpace(input.Bio)
	input.Skills = trimAll(input.Skills)
	input.PortfolioLinks = trimAll(input.PortfolioLinks)
	input.ResumeURL = strings.TrimSpace(input.ResumeURL)
	return input
}

func validateStudentInput(input StudentInput) *ValidationError {
	vErr := &ValidationError{}

	if tooLong(input.Bio, maxBioLength) {
		vErr.add("bio", fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}
	for _, link := range input.PortfolioLinks {
		if !isValidURL(link) {
			vErr.add("portfolioLinks", "portfolio links must be valid URLs")
			break
		}
	}
	if input.ResumeURL != "" && !isValidURL(input.ResumeURL) {
		vErr.add("resumeUrl", "resume must be a valid URL")
	}
	for _, education := range input.Education {
		if education.StartYear > 0 && education.EndYear > 0 && education.EndYear < education.StartYear {
			vErr.add("education", "education end year must not precede start year")
			break
		}
	}
	for _, experience := range input.Experience {
		if experience.StartDate != nil && experience.EndDate != nil && experience.EndDate.Before(*experience.StartDate) {
			vErr.add("experience", "experience end date must not precede start date")
			break
		}
	}

	return vErr
}

func studentFromInput(base StudentProfile, input StudentInput) StudentProfile {
	base.Bio = input.Bio
	base.Education = input.Education
	base.Experience = input.Experience
	base.Skills = input.Skills
	base.PortfolioLinks = input.PortfolioLinks
	base.ResumeURL = input.ResumeURL
	return base
}
