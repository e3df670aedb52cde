package dto

import (
	"time"

	"hireflow/internal/domain/job"
	"hireflow/internal/domain/user"

	"github.com/google/uuid"
)

type JobResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Industry       string     `json:"industry"`
	Status         string     `json:"status"`
	RequiredSkills []string   `json:"required_skills"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
}

func NewJobResponse(j job.Job) JobResponse {
	return JobResponse{
		ID:             j.ID,
		Title:          j.Title,
		Company:        j.Company,
		Industry:       j.Industry,
		Status:         string(j.Status),
		RequiredSkills: j.RequiredSkillNames(),
		PostedAt:       j.PostedAt,
	}
}

type JobMatchResponse struct {
	Job   JobResponse `json:"job"`
	Score int         `json:"score"`
}

type ProfileResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Title    string    `json:"title"`
	Industry string    `json:"industry"`
	Skills   []string  `json:"skills"`
}

func NewProfileResponse(p user.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:   p.UserID,
		Title:    p.Title,
		Industry: p.Industry,
		Skills:   p.SkillNames(),
	}
}

type ApplicantMatchResponse struct {
	Application ApplicationResponse `json:"application"`
	Profile     ProfileResponse     `json:"profile"`
}
