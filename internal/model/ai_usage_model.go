package model

import (
	"time"

	"github.com/google/uuid"
)

type AiUsageRecord struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId    uuid.UUID `gorm:"type:uuid;index"`
	UserId       uuid.UUID `gorm:"type:uuid;index"`
	FunctionName string    `gorm:"type:varchar(64);not null;index"`
	Model        string    `gorm:"type:varchar(128)"`
	InputChars   int       `gorm:"not null;default:0"`
	OutputChars  int       `gorm:"not null;default:0"`
	Succeeded    bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

func (AiUsageRecord) TableName() string {
	return "ai_usage_records"
}

type UserAiSettings struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ApiKey     string    `gorm:"type:text"`
	AiDisabled bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserAiSettings) TableName() string {
	return "user_ai_settings"
}
