package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
)

const (
	MinRelevanceScore = 1
	MaxRelevanceScore = 100
)

// rawAnalysis uses pointers so a missing key can be told apart from an empty value
type rawAnalysis struct {
	Department        *string      `json:"department"`
	EducationLevel    *string      `json:"education_level"`
	HierarchicalLevel *string      `json:"hierarchical_level"`
	Skills            *[]string    `json:"skills"`
	ExecutiveSummary  *string      `json:"executive_summary"`
	RelevanceScore    *json.Number `json:"relevance_score"`
}

// ParseAnalysis pulls the JSON object out of a model reply and validates every field
func ParseAnalysis(reply string) (*interfaces.ResumeAnalysis, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, internalerrors.NewAnalysisError("no JSON object in model reply", nil)
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(reply[start : end+1])))
	decoder.UseNumber()

	var raw rawAnalysis
	if err := decoder.Decode(&raw); err != nil {
		return nil, internalerrors.NewAnalysisError("invalid JSON in model reply", err)
	}

	var missing []string
	if raw.Department == nil {
		missing = append(missing, "department")
	}
	if raw.EducationLevel == nil {
		missing = append(missing, "education_level")
	}
	if raw.HierarchicalLevel == nil {
		missing = append(missing, "hierarchical_level")
	}
	if raw.Skills == nil {
		missing = append(missing, "skills")
	}
	if raw.ExecutiveSummary == nil {
		missing = append(missing, "executive_summary")
	}
	if raw.RelevanceScore == nil {
		missing = append(missing, "relevance_score")
	}
	if len(missing) > 0 {
		return nil, internalerrors.NewAnalysisError("missing fields: "+strings.Join(missing, ", "), nil)
	}

	score, err := parseScore(*raw.RelevanceScore)
	if err != nil {
		return nil, err
	}

	return &interfaces.ResumeAnalysis{
		Department:        strings.TrimSpace(*raw.Department),
		EducationLevel:    strings.TrimSpace(*raw.EducationLevel),
		HierarchicalLevel: strings.TrimSpace(*raw.HierarchicalLevel),
		Skills:            cleanSkills(*raw.Skills),
		ExecutiveSummary:  strings.TrimSpace(*raw.ExecutiveSummary),
		RelevanceScore:    score,
	}, nil
}

func parseScore(number json.Number) (int, error) {
	value, err := number.Float64()
	if err != nil {
		return 0, internalerrors.NewAnalysisError("relevance_score is not a number", errors.WithStack(err))
	}
	if value != math.Trunc(value) {
		return 0, internalerrors.NewAnalysisError("relevance_score "+number.String()+" is not an integer", nil)
	}
	if value < MinRelevanceScore || value > MaxRelevanceScore {
		return 0, internalerrors.NewAnalysisError("relevance_score "+number.String()+" out of range", nil)
	}
	return int(value), nil
}

func cleanSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, skill)
	}
	return result
}
