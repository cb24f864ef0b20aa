package analysis

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
)

const validReply = "```json\n" + `{
  "department": "Desarrollo de Software",
  "education_level": "Ingeniería",
  "hierarchical_level": "Senior",
  "skills": ["Go", " PostgreSQL ", "go", ""],
  "executive_summary": "Ingeniero backend con 8 años de experiencia.",
  "relevance_score": 87
}` + "\n```"

func TestParseAnalysis(t *testing.T) {
	analysis, err := ParseAnalysis(validReply)
	require.NoError(t, err)
	require.Equal(t, "Desarrollo de Software", analysis.Department)
	require.Equal(t, "Ingeniería", analysis.EducationLevel)
	require.Equal(t, "Senior", analysis.HierarchicalLevel)
	require.Equal(t, []string{"Go", "PostgreSQL"}, analysis.Skills)
	require.Equal(t, 87, analysis.RelevanceScore)
}

func TestParseAnalysis_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		msg   string
	}{
		{"no json", "Lo siento, no puedo ayudar", "no JSON object"},
		{"broken json", `{"department": "x",}`, "invalid JSON"},
		{"missing fields", `{"department": "x", "relevance_score": 50}`, "missing fields"},
		{"score too high", `{"department":"","education_level":"","hierarchical_level":"","skills":[],"executive_summary":"","relevance_score":150}`, "out of range"},
		{"score zero", `{"department":"","education_level":"","hierarchical_level":"","skills":[],"executive_summary":"","relevance_score":0}`, "out of range"},
		{"fractional score", `{"department":"","education_level":"","hierarchical_level":"","skills":[],"executive_summary":"","relevance_score":72.5}`, "not an integer"},
		{"score as string", `{"department":"","education_level":"","hierarchical_level":"","skills":[],"executive_summary":"","relevance_score":"eighty"}`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysis(tt.reply)
			require.Error(t, err)
			require.True(t, errors.Is(err, internalerrors.ErrAnalysis))
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseAnalysis_ScoreBounds(t *testing.T) {
	for _, score := range []string{"1", "100", "100.0"} {
		analysis, err := ParseAnalysis(`{"department":"","education_level":"","hierarchical_level":"","skills":[],"executive_summary":"","relevance_score":` + score + `}`)
		require.NoError(t, err)
		require.GreaterOrEqual(t, analysis.RelevanceScore, MinRelevanceScore)
		require.LessOrEqual(t, analysis.RelevanceScore, MaxRelevanceScore)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  Juan Pérez, ingeniero  ")
	require.Contains(t, prompt, "Juan Pérez, ingeniero")
	require.Contains(t, prompt, `"relevance_score"`)
	require.NotContains(t, prompt, "{{RESUME}}")
}
