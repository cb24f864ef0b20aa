package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/internal/utils"
)

// Candidate is written once per analysed résumé and never updated by the pipeline
type Candidate struct {
	ID                string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Email             string         `gorm:"column:email;type:varchar(255);index;not null" json:"email"`
	FullName          string         `gorm:"column:full_name;type:varchar(255);not null" json:"fullName"`
	Phone             *string        `gorm:"column:phone;type:varchar(50)" json:"phone,omitempty"`
	Department        *string        `gorm:"column:department;type:varchar(255);index" json:"department,omitempty"`
	EducationLevel    *string        `gorm:"column:education_level;type:varchar(255);index" json:"educationLevel,omitempty"`
	HierarchicalLevel *string        `gorm:"column:hierarchical_level;type:varchar(255);index" json:"hierarchicalLevel,omitempty"`
	Skills            pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`
	ExecutiveSummary  *string        `gorm:"column:executive_summary;type:text" json:"executiveSummary,omitempty"`
	RelevanceScore    int            `gorm:"column:relevance_score;not null;index;check:relevance_score BETWEEN 1 AND 100" json:"relevanceScore"`
	ResumeURL         *string        `gorm:"column:resume_url;type:varchar(1024)" json:"resumeUrl,omitempty"`
	SourceRunID       string         `gorm:"column:source_run_id;type:varchar(64);index" json:"sourceRunId,omitempty"`
	ProcessedAt       time.Time      `gorm:"column:processed_at;type:timestamp;not null" json:"processedAt"`
	CreatedAt         time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Candidate) TableName() string {
	return "candidates"
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("cand", 16)
	}
	if c.ProcessedAt.IsZero() {
		c.ProcessedAt = utils.Now()
	}
	return nil
}
