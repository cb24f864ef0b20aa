package dto

import (
	"time"

	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/models"
)

const PasswordMask = "••••••••"

type MailboxConfigRequest struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     *int   `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseTLS   *bool  `json:"useTls"`
	IsActive bool   `json:"isActive"`
}

type MailboxConfigUpdateRequest struct {
	Name     *string `json:"name"`
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	UseTLS   *bool   `json:"useTls"`
	IsActive *bool   `json:"isActive"`
}

type ActivateMailboxConfigRequest struct {
	ID string `json:"id" binding:"required"`
}

// MailboxConfigResponse never carries the real password
type MailboxConfigResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Host        string           `json:"host"`
	Port        int              `json:"port"`
	Username    string           `json:"username"`
	Password    string           `json:"password"`
	UseTLS      bool             `json:"useTls"`
	IsActive    bool             `json:"isActive"`
	LastTested  *time.Time       `json:"lastTested,omitempty"`
	TestStatus  *enum.TestStatus `json:"testStatus,omitempty"`
	TestMessage *string          `json:"testMessage,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func NewMailboxConfigResponse(cfg *models.MailboxConfig) *MailboxConfigResponse {
	if cfg == nil {
		return nil
	}
	return &MailboxConfigResponse{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		Password:    PasswordMask,
		UseTLS:      cfg.UseTLS,
		IsActive:    cfg.IsActive,
		LastTested:  cfg.LastTested,
		TestStatus:  cfg.TestStatus,
		TestMessage: cfg.TestMessage,
		CreatedAt:   cfg.CreatedAt,
		UpdatedAt:   cfg.UpdatedAt,
	}
}

type MailboxConfigListResponse struct {
	Configs      []*MailboxConfigResponse `json:"configs"`
	ActiveConfig *MailboxConfigResponse   `json:"activeConfig"`
}

type ConnectionTestResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Details ConnectionTestDetails `json:"details"`
}

type ConnectionTestDetails struct {
	Host          string  `json:"host,omitempty"`
	Port          int     `json:"port,omitempty"`
	TLS           bool    `json:"tls"`
	Error         string  `json:"error,omitempty"`
	OriginalError string  `json:"originalError,omitempty"`
	Messages      *uint32 `json:"messages,omitempty"`
}
