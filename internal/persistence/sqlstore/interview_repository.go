package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

var interviewColumnList = []string{
	"id", "job_id", "candidate_id", "start_time", "end_time", "interview_date", "duration_minutes",
	"timezone", "round", "interview_type", "platform", "location", "meeting_id", "meeting_password",
	"interviewers", "status", "feedback", "score", "result", "attachments", "reminders",
	"video_provider", "created_by", "cancelled_by", "cancel_reason", "created_at", "updated_at",
}

var (
	interviewColumns       = strings.Join(interviewColumnList, ", ")
	interviewColumnsPrefix = "i." + strings.Join(interviewColumnList, ", i.")
)

// InterviewRepository implements persistence.InterviewRepository.
type InterviewRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewInterviewRepository creates a new interview repository.
func NewInterviewRepository(pool *ConnectionPool) *InterviewRepository {
	return &InterviewRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateInterview inserts a new interview.
func (r *InterviewRepository) CreateInterview(ctx context.Context, interview persistence.Interview) error {
	if interview.ID == "" || interview.MeetingID == "" {
		return persistence.ErrConstraintViolation
	}
	stampCreate(&interview.CreatedAt, &interview.UpdatedAt)

	docs, err := encodeInterviewDocs(interview)
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(interviewColumnList)), ", ")
	_, err = r.helper.Exec(ctx,
		`INSERT INTO interviews (`+interviewColumns+`) VALUES (`+placeholders+`)`,
		interview.ID,
		interview.JobID,
		interview.CandidateID,
		formatTime(interview.StartTime),
		nullableTime(interview.EndTime),
		formatTime(interview.InterviewDate),
		interview.DurationMinutes,
		interview.Timezone,
		interview.Round,
		interview.InterviewType,
		interview.Platform,
		interview.Location,
		interview.MeetingID,
		interview.MeetingPassword,
		docs.interviewers,
		interview.Status,
		interview.Feedback,
		nullableInt(interview.Score),
		interview.Result,
		docs.attachments,
		docs.reminders,
		docs.videoProvider,
		nullableString(interview.CreatedBy),
		nullableString(interview.CancelledBy),
		interview.CancelReason,
		formatTime(interview.CreatedAt),
		formatTime(interview.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateInterview replaces the mutable columns. meeting_id and created_by
// are never rewritten.
func (r *InterviewRepository) UpdateInterview(ctx context.Context, interview persistence.Interview) error {
	if interview.UpdatedAt.IsZero() {
		interview.UpdatedAt = time.Now().UTC()
	}
	docs, err := encodeInterviewDocs(interview)
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE interviews
		SET job_id = ?, candidate_id = ?, start_time = ?, end_time = ?, interview_date = ?, duration_minutes = ?,
			timezone = ?, round = ?, interview_type = ?, platform = ?, location = ?, meeting_password = ?,
			interviewers = ?, status = ?, feedback = ?, score = ?, result = ?, attachments = ?, reminders = ?,
			video_provider = ?, cancelled_by = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ?`,
		interview.JobID,
		interview.CandidateID,
		formatTime(interview.StartTime),
		nullableTime(interview.EndTime),
		formatTime(interview.InterviewDate),
		interview.DurationMinutes,
		interview.Timezone,
		interview.Round,
		interview.InterviewType,
		interview.Platform,
		interview.Location,
		interview.MeetingPassword,
		docs.interviewers,
		interview.Status,
		interview.Feedback,
		nullableInt(interview.Score),
		interview.Result,
		docs.attachments,
		docs.reminders,
		docs.videoProvider,
		nullableString(interview.CancelledBy),
		interview.CancelReason,
		formatTime(interview.UpdatedAt),
		interview.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetInterview retrieves an interview by ID.
func (r *InterviewRepository) GetInterview(ctx context.Context, id string) (persistence.Interview, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id)
	interview, err := scanInterview(row)
	if err != nil {
		return persistence.Interview{}, r.mapper.MapError(err)
	}
	return interview, nil
}

// ListInterviews returns interviews ordered by date. The company filter is
// resolved through the owning job.
func (r *InterviewRepository) ListInterviews(ctx context.Context, filter persistence.InterviewFilter) ([]persistence.Interview, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.CandidateID != "" {
		conditions = append(conditions, "i.candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, "j.company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.JobID != "" {
		conditions = append(conditions, "i.job_id = ?")
		args = append(args, filter.JobID)
	}
	if filter.From != nil {
		conditions = append(conditions, "i.interview_date >= ?")
		args = append(args, formatTime(*filter.From))
	}

	query := `SELECT ` + interviewColumnsPrefix + ` FROM interviews i
		JOIN jobs j ON j.id = i.job_id` + whereClause(conditions) + `
		ORDER BY i.interview_date ASC, i.start_time ASC, i.id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	interviews := make([]persistence.Interview, 0)
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, interview)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return interviews, nil
}

// DeleteInterview removes an interview by ID.
func (r *InterviewRepository) DeleteInterview(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM interviews WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

type interviewDocs struct {
	interviewers  string
	attachments   string
	reminders     string
	videoProvider string
}

func encodeInterviewDocs(interview persistence.Interview) (interviewDocs, error) {
	var (
		docs interviewDocs
		err  error
	)
	if docs.interviewers, err = encodeJSON("interviewers", interview.Interviewers); err != nil {
		return docs, err
	}
	if docs.attachments, err = encodeJSON("attachments", interview.Attachments); err != nil {
		return docs, err
	}
	if docs.reminders, err = encodeJSON("reminders", interview.Reminders); err != nil {
		return docs, err
	}
	if docs.videoProvider, err = encodeJSON("video_provider", interview.VideoProvider); err != nil {
		return docs, err
	}
	return docs, nil
}

func scanInterview(row rowScanner) (persistence.Interview, error) {
	var (
		interview                                   persistence.Interview
		startTime, interviewDate                    string
		endTime                                     sql.NullString
		score                                       sql.NullInt64
		interviewers, attachments, reminders, video string
		createdBy, cancelledBy                      sql.NullString
		createdAt, updatedAt                        string
	)
	if err := row.Scan(
		&interview.ID,
		&interview.JobID,
		&interview.CandidateID,
		&startTime,
		&endTime,
		&interviewDate,
		&interview.DurationMinutes,
		&interview.Timezone,
		&interview.Round,
		&interview.InterviewType,
		&interview.Platform,
		&interview.Location,
		&interview.MeetingID,
		&interview.MeetingPassword,
		&interviewers,
		&interview.Status,
		&interview.Feedback,
		&score,
		&interview.Result,
		&attachments,
		&reminders,
		&video,
		&createdBy,
		&cancelledBy,
		&interview.CancelReason,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Interview{}, err
	}

	for _, doc := range []struct {
		column string
		value  string
		target any
	}{
		{"interviewers", interviewers, &interview.Interviewers},
		{"attachments", attachments, &interview.Attachments},
		{"reminders", reminders, &interview.Reminders},
		{"video_provider", video, &interview.VideoProvider},
	} {
		if err := decodeJSON(doc.column, doc.value, doc.target); err != nil {
			return persistence.Interview{}, err
		}
	}

	var err error
	interview.Score = intPtr(score)
	interview.CreatedBy = stringPtr(createdBy)
	interview.CancelledBy = stringPtr(cancelledBy)
	if interview.StartTime, err = parseTime("start_time", startTime); err != nil {
		return persistence.Interview{}, err
	}
	if interview.EndTime, err = parseNullableTime("end_time", endTime); err != nil {
		return persistence.Interview{}, err
	}
	if interview.InterviewDate, err = parseTime("interview_date", interviewDate); err != nil {
		return persistence.Interview{}, err
	}
	if interview.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Interview{}, err
	}
	if interview.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Interview{}, err
	}
	return interview, nil
}
