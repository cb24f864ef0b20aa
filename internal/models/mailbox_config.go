package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const DefaultMailboxConfigName = "Main configuration"

// MailboxConfig holds the IMAP account the pipeline reads from.
// At most one row has IsActive set.
type MailboxConfig struct {
	ID          string           `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name        string           `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Host        string           `gorm:"column:host;type:varchar(255);not null" json:"host"`
	Port        int              `gorm:"column:port;not null" json:"port"`
	Username    string           `gorm:"column:username;type:varchar(255);not null" json:"username"`
	Password    string           `gorm:"column:password;type:varchar(255);not null" json:"-"`
	UseTLS      bool             `gorm:"column:use_tls;not null" json:"useTls"`
	IsActive    bool             `gorm:"column:is_active;not null;default:false;index" json:"isActive"`
	LastTested  *time.Time       `gorm:"column:last_tested;type:timestamp" json:"lastTested,omitempty"`
	TestStatus  *enum.TestStatus `gorm:"column:test_status;type:varchar(20)" json:"testStatus,omitempty"`
	TestMessage *string          `gorm:"column:test_message;type:text" json:"testMessage,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (MailboxConfig) TableName() string {
	return "mailbox_configurations"
}

func (m *MailboxConfig) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("mcfg", 16)
	}
	return nil
}
