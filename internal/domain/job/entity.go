package job

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "Active"
	StatusDraft  Status = "Draft"
	StatusOnHold Status = "OnHold"
	StatusClosed Status = "Closed"
)

type RequiredSkill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type Job struct {
	ID             uuid.UUID
	Title          string
	Company        string
	Industry       string
	Status         Status
	RequiredSkills []RequiredSkill

	ViewCount        int64
	ApplicationCount int64

	PostedAt  *time.Time
	CreatedAt time.Time
}

func (j Job) RequiredSkillNames() []string {
	out := make([]string, 0, len(j.RequiredSkills))
	for _, s := range j.RequiredSkills {
		out = append(out, s.Name)
	}
	return out
}
