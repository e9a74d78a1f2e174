package application

import "time"

// Roles recognised by the role gate.
const (
	RoleStudent = "student"
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

// Application statuses.
const (
	ApplicationSubmitted   = "Submitted"
	ApplicationUnderReview = "Under Review"
	ApplicationShortlisted = "Shortlisted"
	ApplicationRejected    = "Rejected"
	ApplicationHired       = "Hired"
)

// Interview lifecycle status.
const (
	InterviewScheduled = "Scheduled"
	InterviewCompleted = "Completed"
	InterviewCancelled = "Cancelled"
)

// Interview outcome, independent of the lifecycle status.
const (
	ResultPending     = "Pending"
	ResultShortlisted = "Shortlisted"
	ResultRejected    = "Rejected"
	ResultSelected    = "Selected"
)

// Interview formats.
const (
	InterviewOnline  = "Online"
	InterviewOffline = "Offline"
	InterviewHybrid  = "Hybrid"
)

// Video provider webhook states.
const (
	ProviderPending   = "pending"
	ProviderCompleted = "completed"
	ProviderFailed    = "failed"
	ProviderCancelled = "cancelled"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID    string
	Role      string
	CompanyID string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// User is an account exposed by the application services.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CompanyID *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// RegisterInput captures a self-registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Address is a postal location.
type Address struct {
	Address string
	City    string
	State   string
	Country string
	Pincode string
}

// Contact is a named contact person.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// SocialLinks groups a company's social profiles.
type SocialLinks struct {
	LinkedIn string
	Twitter  string
	Facebook string
}

// CompanyInput captures caller provided company profile fields.
type CompanyInput struct {
	UserID        string
	Name          string
	Industry      string
	Size          string
	Description   string
	Logo          string
	Website       string
	Location      Address
	ContactPerson Contact
	SocialLinks   SocialLinks
	Verified      bool
}

// CompanyProfile is owned by exactly one company user.
type CompanyProfile struct {
	ID            string
	UserID        string
	Name          string
	Industry      string
	Size          string
	Description   string
	Logo          string
	Website       string
	Location      Address
	ContactPerson Contact
	SocialLinks   SocialLinks
	Verified      bool
	CreatedBy     *string
	UpdatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompanyDashboard summarises a company's recruiting activity.
type CompanyDashboard struct {
	Company              CompanyProfile
	JobsPosted           int
	ApplicationsReceived int
	UpcomingInterviews   int
}

// CreateCompanyParams wraps the data required to create a company profile.
type CreateCompanyParams struct {
	Principal Principal
	Input     CompanyInput
}

// UpdateCompanyParams wraps the data required to update a company profile.
type UpdateCompanyParams struct {
	Principal Principal
	CompanyID string
	Input     CompanyInput
}

// Education is one entry of a student's education history.
type Education struct {
	Institution  string
	Degree       string
	FieldOfStudy string
	StartYear    int
	EndYear      int
	Grade        string
}

// Experience is one entry of a student's work history.
type Experience struct {
	Company     string
	Role        string
	StartDate   *time.Time
	EndDate     *time.Time
	Description string
}

// StudentInput captures caller provided student profile fields.
type StudentInput struct {
	UserID         string
	Bio            string
	Education      []Education
	Experience     []Experience
	Skills         []string
	PortfolioLinks []string
	ResumeURL      string
}

// StudentProfile is owned by exactly one student user.
type StudentProfile struct {
	ID             string
	UserID         string
	Bio            string
	Education      []Education
	Experience     []Experience
	Skills         []string
	PortfolioLinks []string
	ResumeURL      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateStudentParams wraps the data required to create a student profile.
type CreateStudentParams struct {
	Principal Principal
	Input     StudentInput
}

// UpdateStudentParams wraps the data required to update a student profile.
type UpdateStudentParams struct {
	Principal Principal
	StudentID string
	Input     StudentInput
}

// DriveInput captures caller provided placement drive fields.
type DriveInput struct {
	Title               string
	CompanyName         string
	Location            string
	StartDate           time.Time
	EndDate             *time.Time
	EligibilityCriteria string
	JobDescription      string
	PackageOffered      string
	ContactPerson       string
}

// PlacementDrive is a recruiting window.
type PlacementDrive struct {
	ID                  string
	Title               string
	CompanyName         string
	Location            string
	StartDate           time.Time
	EndDate             *time.Time
	EligibilityCriteria string
	JobDescription      string
	PackageOffered      string
	ContactPerson       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateDriveParams wraps the data required to create a placement drive.
type CreateDriveParams struct {
	Principal Principal
	Input     DriveInput
}

// UpdateDriveParams wraps the data required to update a placement drive.
type UpdateDriveParams struct {
	Principal Principal
	DriveID   string
	Input     DriveInput
}

// JobInput captures caller provided job fields.
type JobInput struct {
	PlacementDriveID    string
	CompanyID           string
	Title               string
	Description         string
	Location            string
	Salary              string
	SkillsRequired      []string
	Openings            int
	PostedDate          *time.Time
	ApplicationDeadline *time.Time
}

// Job is posted by a company inside a placement drive.
type Job struct {
	ID                  string
	PlacementDriveID    string
	CompanyID           string
	Title               string
	Description         string
	Location            string
	Salary              string
	SkillsRequired      []string
	Openings            int
	PostedDate          time.Time
	ApplicationDeadline *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateJobParams wraps the data required to create a job.
type CreateJobParams struct {
	Principal Principal
	Input     JobInput
}

// UpdateJobParams wraps the data required to update a job.
type UpdateJobParams struct {
	Principal Principal
	JobID     string
	Input     JobInput
}

// ApplicationInput captures a job application submission.
type ApplicationInput struct {
	JobID       string
	CandidateID string
	Resume      string
	CoverLetter string
}

// ApplicationReview captures the fields a reviewer may change. Nil fields are
// left untouched.
type ApplicationReview struct {
	Status *string
	Notes  *string
}

// Application links a candidate to a job.
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	CompanyID   string
	Resume      string
	CoverLetter string
	Status      string
	Notes       string
	UpdatedBy   *string
	AppliedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplicationFilter narrows application listings. Empty fields are ignored.
type ApplicationFilter struct {
	CandidateID string
	CompanyID   string
	JobID       string
	Status      string
}

// CreateApplicationParams wraps the data required to submit an application.
type CreateApplicationParams struct {
	Principal Principal
	Input     ApplicationInput
}

// UpdateApplicationParams wraps the data required to review an application.
type UpdateApplicationParams struct {
	Principal     Principal
	ApplicationID string
	Review        ApplicationReview
}

// Attachment is a document shared with an interview.
type Attachment struct {
	URL        string
	Name       string
	UploadedBy string
	UploadedAt time.Time
}

// Reminder records when a candidate should be reminded of an interview.
type Reminder struct {
	MinutesBefore int
	SentAt        *time.Time
}

// VideoProvider holds the external meeting details of an interview.
type VideoProvider struct {
	ProviderName      string
	ExternalMeetingID string
	JoinURL           string
	WebhookStatus     string
}

// Interview is a scheduled evaluation of a candidate for a job.
type Interview struct {
	ID              string
	JobID           string
	CandidateID     string
	StartTime       time.Time
	EndTime         *time.Time
	InterviewDate   time.Time
	DurationMinutes int
	Timezone        string
	Round           string
	InterviewType   string
	Platform        string
	Location        string
	MeetingID       string
	MeetingPassword string
	Interviewers    []string
	Status          string
	Feedback        string
	Score           *int
	Result          string
	Attachments     []Attachment
	Reminders       []Reminder
	VideoProvider   VideoProvider
	CreatedBy       *string
	CancelledBy     *string
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InterviewInput captures the fields supplied when scheduling an interview.
type InterviewInput struct {
	JobID           string
	CandidateID     string
	StartTime       *time.Time
	EndTime         *time.Time
	InterviewDate   *time.Time
	DurationMinutes int
	Timezone        string
	Round           string
	InterviewType   string
	Location        string
	MeetingPassword string
	Interviewers    []string
	Attachments     []Attachment
	Reminders       []Reminder
}

// InterviewPatch captures a partial interview update. Nil fields are left
// untouched.
type InterviewPatch struct {
	Feedback        *string
	Score           *int
	Result          *string
	Status          *string
	JobID           *string
	CandidateID     *string
	StartTime       *time.Time
	EndTime         *time.Time
	InterviewDate   *time.Time
	DurationMinutes *int
	InterviewType   *string
	Location        *string
	Round           *string
	Platform        *string
	Interviewers    []string
	CancelReason    *string
}

// InterviewFilter narrows interview listings. Empty fields are ignored.
type InterviewFilter struct {
	CandidateID string
	CompanyID   string
	JobID       string
	From        *time.Time
}

// CreateInterviewParams wraps the data required to schedule an interview.
type CreateInterviewParams struct {
	Principal Principal
	Input     InterviewInput
}

// UpdateInterviewParams wraps the data required to update an interview.
type UpdateInterviewParams struct {
	Principal   Principal
	InterviewID string
	Patch       InterviewPatch
}

// ReportInput captures caller provided report fields. Counts are always
// computed from storage.
type ReportInput struct {
	PlacementDriveID string
	StartDate        *time.Time
	EndDate          *time.Time
	Summary          string
}

// Report is the stored summary of one placement drive.
type Report struct {
	ID               string
	PlacementDriveID string
	ParticipantCount int
	InterviewCount   int
	OffersMade       int
	StudentsPlaced   int
	StartDate        time.Time
	EndDate          *time.Time
	Summary          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DriveStats aggregates the records attached to a placement drive.
type DriveStats struct {
	Participants   int
	Interviews     int
	OffersMade     int
	StudentsPlaced int
}

// CreateReportParams wraps the data required to create a report.
type CreateReportParams struct {
	Principal Principal
	Input     ReportInput
}

// UpdateReportParams wraps the data required to update a report.
type UpdateReportParams struct {
	Principal Principal
	ReportID  string
	Input     ReportInput
}
