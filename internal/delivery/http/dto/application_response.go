package dto

import (
	"time"

	"hireflow/internal/domain/application"

	"github.com/google/uuid"
)

type NoteResponse struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type InterviewResponse struct {
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
}

type ApplicationResponse struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	JobID              uuid.UUID          `json:"job_id"`
	Status             string             `json:"status"`
	AppliedAt          time.Time          `json:"applied_at"`
	ResumeURL          string             `json:"resume_url"`
	CoverLetter        string             `json:"cover_letter,omitempty"`
	ExpectedSalary     *int64             `json:"expected_salary,omitempty"`
	AvailableStartDate *time.Time         `json:"available_start_date,omitempty"`
	Notes              []NoteResponse     `json:"notes"`
	Interview          *InterviewResponse `json:"interview,omitempty"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func NewApplicationResponse(a application.Application) ApplicationResponse {
	out := ApplicationResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		JobID:              a.JobID,
		Status:             string(a.Status),
		AppliedAt:          a.AppliedAt,
		ResumeURL:          a.ResumeURL,
		CoverLetter:        a.CoverLetter,
		ExpectedSalary:     a.ExpectedSalary,
		AvailableStartDate: a.AvailableStartDate,
		Notes:              make([]NoteResponse, 0, len(a.Notes)),
		UpdatedAt:          a.UpdatedAt,
	}
	for _, n := range a.Notes {
		out.Notes = append(out.Notes, NoteResponse{Author: n.Author, Content: n.Content, CreatedAt: n.CreatedAt})
	}
	if a.Interview != nil {
		out.Interview = &InterviewResponse{Date: a.Interview.Date, Location: a.Interview.Location, Notes: a.Interview.Notes}
	}
	return out
}
