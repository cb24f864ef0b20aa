package interfaces

import (
	"context"

	"github.com/recruitstack/recruitstack/dto"
)

type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

type DecodedMessage struct {
	UID         uint32
	Subject     string
	FromAddress string
	FromName    string
	Attachments []Attachment
}

// ResumeAnalysis is validated before it leaves the analyzer; RelevanceScore is always in [1,100]
type ResumeAnalysis struct {
	Department        string   `json:"department"`
	EducationLevel    string   `json:"education_level"`
	HierarchicalLevel string   `json:"hierarchical_level"`
	Skills            []string `json:"skills"`
	ExecutiveSummary  string   `json:"executive_summary"`
	RelevanceScore    int      `json:"relevance_score"`
}

type TextExtractor interface {
	Extract(ctx context.Context, attachment Attachment) (string, error)
}

type ResumeAnalyzer interface {
	Analyze(ctx context.Context, text string) (*ResumeAnalysis, error)
}

type EmailProcessor interface {
	Run(ctx context.Context) (*dto.ProcessingRunResult, error)
}
