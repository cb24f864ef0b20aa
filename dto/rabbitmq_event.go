package dto

import "github.com/recruitstack/recruitstack/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	RunId       string `json:"runId,omitempty"`
	Timestamp   string `json:"timestamp"`
}

type CandidateCreated struct {
	CandidateId       string   `json:"candidateId"`
	Email             string   `json:"email"`
	FullName          string   `json:"fullName"`
	Department        string   `json:"department,omitempty"`
	HierarchicalLevel string   `json:"hierarchicalLevel,omitempty"`
	Skills            []string `json:"skills"`
	RelevanceScore    int      `json:"relevanceScore"`
	ResumeUrl         string   `json:"resumeUrl,omitempty"`
	ProcessingLogId   string   `json:"processingLogId"`
}

type ProcessingRunCompleted struct {
	Result ProcessingRunResult `json:"result"`
}
