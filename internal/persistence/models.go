package persistence

import "time"

// User is an account row. Role is one of student, company or admin.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CompanyID    *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Address is stored as a JSON document on the owning row.
type Address struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// Contact is stored as a JSON document on the owning row.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SocialLinks is stored as a JSON document on the owning row.
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
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

// Education is one entry of a student's education history.
type Education struct {
	Institution  string `json:"institution,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear,omitempty"`
	EndYear      int    `json:"endYear,omitempty"`
	Grade        string `json:"grade,omitempty"`
}

// Experience is one entry of a student's work history.
type Experience struct {
	Company     string     `json:"company,omitempty"`
	Role        string     `json:"role,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
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

// Attachment is a document shared with an interview.
type Attachment struct {
	URL        string    `json:"url"`
	Name       string    `json:"name,omitempty"`
	UploadedBy string    `json:"uploadedBy,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Reminder records when a candidate should be reminded of an interview.
type Reminder struct {
	MinutesBefore int        `json:"whenMinutesBefore"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
}

// VideoProvider holds the external meeting details of an interview.
type VideoProvider struct {
	ProviderName      string `json:"providerName,omitempty"`
	ExternalMeetingID string `json:"externalMeetingId,omitempty"`
	JoinURL           string `json:"joinUrl,omitempty"`
	WebhookStatus     string `json:"webhookStatus,omitempty"`
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

// InterviewFilter narrows interview listings. Empty fields are ignored.
type InterviewFilter struct {
	CandidateID string
	CompanyID   string
	JobID       string
	// From keeps interviews whose interview date is at or after the instant.
	From *time.Time
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

// CompanyStats backs the company dashboard.
type CompanyStats struct {
	JobsPosted           int
	ApplicationsReceived int
	UpcomingInterviews   int
}
