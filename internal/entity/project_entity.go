package entity

import (
	"time"

	"github.com/google/uuid"
)

// Project holds the static attributes the memory profile is built around.
type Project struct {
	Id          uuid.UUID
	UserId      uuid.UUID // owner
	Name        string
	Pitch       string
	Audience    string
	Positioning string
	Constraints string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Phase struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Name      string
	Position  int
	CreatedAt time.Time
}

type Step struct {
	Id          uuid.UUID
	ProjectId   uuid.UUID
	PhaseId     uuid.UUID
	Name        string
	Description string
	Position    int
	CreatedAt   time.Time
}
