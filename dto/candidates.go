package dto

import "github.com/recruitstack/recruitstack/internal/models"

type CandidateListResponse struct {
	Candidates []models.Candidate `json:"candidates"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
	HasNext    bool               `json:"hasNext"`
}

type CandidateStatsResponse struct {
	TotalCandidates     int64        `json:"totalCandidates"`
	AverageScore        float64      `json:"averageScore"`
	HighScoreCandidates int64        `json:"highScoreCandidates"`
	ByDepartment        []NamedCount `json:"byDepartment"`
	ByEducationLevel    []NamedCount `json:"byEducationLevel"`
	ByHierarchicalLevel []NamedCount `json:"byHierarchicalLevel"`
	TopSkills           []NamedCount `json:"topSkills"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
