package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Role         Role
	PasswordHash string

	OAuthProvider *string
	OAuthSubject  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Skill is the single normalized shape for an applicant skill; anything that
// arrives as a bare string is widened at the boundary before it reaches the
// matching engine.
type Skill struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"`
}

type Profile struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Title           string
	Industry        string
	YearsExperience int
	Education       string
	ResumeURL       string
	Skills          []Skill

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Profile) SkillNames() []string {
	out := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		out = append(out, s.Name)
	}
	return out
}
