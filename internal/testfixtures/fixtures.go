package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

var fixtureCounter uint64

var referenceTime = time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

func nextFixture(kind string) (string, time.Time) {
	idx := atomic.AddUint64(&fixtureCounter, 1)
	return fmt.Sprintf("%s-%03d", kind, idx), referenceTime.Add(time.Duration(idx) * time.Minute)
}

func ptr[T any](v T) *T {
	return &v
}

// UserOption configures a user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns an active student with a unique id and email.
func NewUserFixture(opts ...UserOption) persistence.User {
	id, created := nextFixture("user")
	user := persistence.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash-" + id,
		Role:         "student",
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithUserName overrides the generated name.
func WithUserName(name string) UserOption {
	return func(u *persistence.User) { u.Name = name }
}

// WithUserRole sets the role.
func WithUserRole(role string) UserOption {
	return func(u *persistence.User) { u.Role = role }
}

// CompanyOption configures a company profile fixture.
type CompanyOption func(*persistence.CompanyProfile)

// NewCompanyFixture returns a profile owned by userID.
func NewCompanyFixture(userID string, opts ...CompanyOption) persistence.CompanyProfile {
	id, created := nextFixture("company")
	company := persistence.CompanyProfile{
		ID:       id,
		UserID:   userID,
		Name:     "Company " + id,
		Industry: "Software",
		Size:     "11-50",
		Location: persistence.Address{City: "Pune", Country: "India"},
		ContactPerson: persistence.Contact{
			Name:  "Recruiter",
			Email: "hr@" + id + ".example.com",
			Phone: "9876543210",
		},
		CreatedBy: ptr(userID),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&company)
	}
	return company
}

// WithCompanyName overrides the generated company name.
func WithCompanyName(name string) CompanyOption {
	return func(c *persistence.CompanyProfile) { c.Name = name }
}

// DriveOption configures a placement drive fixture.
type DriveOption func(*persistence.PlacementDrive)

// NewDriveFixture returns a week-long drive starting at ReferenceTime.
func NewDriveFixture(opts ...DriveOption) persistence.PlacementDrive {
	id, created := nextFixture("drive")
	drive := persistence.PlacementDrive{
		ID:          id,
		Title:       "Campus Drive " + id,
		CompanyName: "Acme",
		Location:    "Main Campus",
		StartDate:   referenceTime,
		EndDate:     ptr(referenceTime.Add(7 * 24 * time.Hour)),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&drive)
	}
	return drive
}

// WithDriveDates overrides the drive window.
func WithDriveDates(start time.Time, end *time.Time) DriveOption {
	return func(d *persistence.PlacementDrive) {
		d.StartDate = start
		d.EndDate = end
	}
}

// JobOption configures a job fixture.
type JobOption func(*persistence.Job)

// NewJobFixture returns a job in driveID posted by companyID.
func NewJobFixture(driveID, companyID string, opts ...JobOption) persistence.Job {
	id, created := nextFixture("job")
	job := persistence.Job{
		ID:                  id,
		PlacementDriveID:    driveID,
		CompanyID:           companyID,
		Title:               "Backend Engineer " + id,
		Description:         "Build services",
		Location:            "Remote",
		SkillsRequired:      []string{"go", "sql"},
		Openings:            2,
		PostedDate:          referenceTime,
		ApplicationDeadline: ptr(referenceTime.Add(14 * 24 * time.Hour)),
		CreatedAt:           created,
		UpdatedAt:           created,
	}
	for _, opt := range opts {
		opt(&job)
	}
	return job
}

// WithJobTitle overrides the generated title.
func WithJobTitle(title string) JobOption {
	return func(j *persistence.Job) { j.Title = title }
}

// ApplicationOption configures an application fixture.
type ApplicationOption func(*persistence.Application)

// NewApplicationFixture returns a submitted application.
func NewApplicationFixture(jobID, candidateID, companyID string, opts ...ApplicationOption) persistence.Application {
	id, created := nextFixture("application")
	application := persistence.Application{
		ID:          id,
		JobID:       jobID,
		CandidateID: candidateID,
		CompanyID:   companyID,
		Resume:      "https://cdn.example.com/resumes/" + candidateID + ".pdf",
		Status:      "Submitted",
		AppliedAt:   created,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&application)
	}
	return application
}

// WithApplicationStatus sets the application status.
func WithApplicationStatus(status string) ApplicationOption {
	return func(a *persistence.Application) { a.Status = status }
}

// InterviewOption configures an interview fixture.
type InterviewOption func(*persistence.Interview)

// NewInterviewFixture returns a scheduled online interview one day after
// ReferenceTime.
func NewInterviewFixture(jobID, candidateID string, opts ...InterviewOption) persistence.Interview {
	id, created := nextFixture("interview")
	start := referenceTime.Add(24 * time.Hour)
	meetingID := fmt.Sprintf("interview-%d-%s", start.UnixMilli(), candidateID)
	interview := persistence.Interview{
		ID:              id,
		JobID:           jobID,
		CandidateID:     candidateID,
		StartTime:       start,
		EndTime:         ptr(start.Add(30 * time.Minute)),
		InterviewDate:   start,
		DurationMinutes: 30,
		Timezone:        "UTC",
		Round:           "Round 1",
		InterviewType:   "Online",
		Platform:        "Jitsi Meet",
		MeetingID:       meetingID,
		Interviewers:    []string{"Priya"},
		Status:          "Scheduled",
		Result:          "Pending",
		VideoProvider: persistence.VideoProvider{
			ProviderName:      "Jitsi Meet",
			ExternalMeetingID: meetingID,
			JoinURL:           "https://meet.jit.si/" + meetingID,
			WebhookStatus:     "pending",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&interview)
	}
	return interview
}

// WithInterviewResult sets the interview result.
func WithInterviewResult(result string) InterviewOption {
	return func(i *persistence.Interview) { i.Result = result }
}

// WithInterviewDate moves the interview to start at t.
func WithInterviewDate(t time.Time) InterviewOption {
	return func(i *persistence.Interview) {
		i.StartTime = t
		i.InterviewDate = t
		i.EndTime = ptr(t.Add(30 * time.Minute))
	}
}
