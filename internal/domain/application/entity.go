package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew          Status = "New"
	StatusUnderReview  Status = "UnderReview"
	StatusShortlisted  Status = "Shortlisted"
	StatusForInterview Status = "ForInterview"
	StatusInterviewed  Status = "Interviewed"
	StatusForJobOffer  Status = "ForJobOffer"
	StatusHired        Status = "Hired"
	StatusRejected     Status = "Rejected"
	StatusWithdrawn    Status = "Withdrawn"
)

// SystemAuthor is the note author recorded when no admin initiated a change.
const SystemAuthor = "System"

type Note struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Interview struct {
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

type Application struct {
	ID     uuid.UUID
	UserID uuid.UUID
	JobID  uuid.UUID
	Status Status

	AppliedAt          time.Time
	ResumeURL          string
	CoverLetter        string
	ExpectedSalary     *int64
	AvailableStartDate *time.Time

	Notes     []Note
	Interview *Interview

	UpdatedAt time.Time
}
