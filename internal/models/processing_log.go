package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/utils"
)

// ProcessingLogEntry audits one attachment attempt. Rows are never deleted.
type ProcessingLogEntry struct {
	ID               string                `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	RunID            string                `gorm:"column:run_id;type:varchar(64);index" json:"runId"`
	EmailSubject     string                `gorm:"column:email_subject;type:text" json:"emailSubject"`
	SenderEmail      string                `gorm:"column:sender_email;type:varchar(255);index" json:"senderEmail"`
	AttachmentName   string                `gorm:"column:attachment_name;type:varchar(512)" json:"attachmentName"`
	ProcessingStatus enum.ProcessingStatus `gorm:"column:processing_status;type:varchar(20);index;not null" json:"processingStatus"`
	CandidateID      *string               `gorm:"column:candidate_id;type:varchar(50);index" json:"candidateId,omitempty"`
	Candidate        *Candidate            `gorm:"foreignKey:CandidateID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	ErrorMessage     *string               `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	CreatedAt        time.Time             `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (ProcessingLogEntry) TableName() string {
	return "processing_logs"
}

func (p *ProcessingLogEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("plog", 16)
	}
	if p.ProcessingStatus == "" {
		p.ProcessingStatus = enum.ProcessingStatusProcessing
	}
	return nil
}
