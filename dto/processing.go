package dto

import "time"

// ProcessingRunResult summarises one processing run. Processed counts messages, not candidates.
type ProcessingRunResult struct {
	RunId             string             `json:"runId"`
	StartedAt         time.Time          `json:"startedAt"`
	FinishedAt        time.Time          `json:"finishedAt"`
	MessagesFound     int                `json:"messagesFound"`
	MessagesDecoded   int                `json:"messagesDecoded"`
	MessagesMalformed int                `json:"messagesMalformed"`
	Processed         int                `json:"processed"`
	CandidatesCreated int                `json:"candidatesCreated"`
	AttachmentsFailed int                `json:"attachmentsFailed"`
	ProcessedMessages []ProcessedMessage `json:"processedMessages"`
}

type ProcessedMessage struct {
	UID          uint32   `json:"uid"`
	Subject      string   `json:"subject"`
	SenderEmail  string   `json:"senderEmail"`
	CandidateIds []string `json:"candidateIds"`
	Failed       int      `json:"failed"`
}

type ProcessEmailsResponse struct {
	Success           bool   `json:"success"`
	Processed         int    `json:"processed"`
	Message           string `json:"message"`
	RunId             string `json:"runId"`
	CandidatesCreated int    `json:"candidatesCreated"`
	AttachmentsFailed int    `json:"attachmentsFailed"`
}
