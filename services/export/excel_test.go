package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/utils"
)

func TestWriteCandidates(t *testing.T) {
	candidates := []models.Candidate{
		{
			ID:                "cand_1",
			FullName:          "juan perez",
			Email:             "juan.perez@x.com",
			Department:        utils.StringPtr("Tecnología"),
			HierarchicalLevel: utils.StringPtr("Senior"),
			Skills:            pq.StringArray{"Go", "SQL"},
			RelevanceScore:    85,
			ResumeURL:         utils.StringPtr("/resumes/hoja_de_vida.pdf"),
			ProcessedAt:       time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:             "cand_2",
			FullName:       "Ana",
			Email:          "ana@x.com",
			RelevanceScore: 40,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().WriteCandidates(context.Background(), &buf, candidates))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(CandidatesSheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "Full name", header)

	name, _ := f.GetCellValue(CandidatesSheet, "A2")
	require.Equal(t, "juan perez", name)
	score, _ := f.GetCellValue(CandidatesSheet, "G2")
	require.Equal(t, "85", score)
	skills, _ := f.GetCellValue(CandidatesSheet, "H2")
	require.Equal(t, "Go, SQL", skills)
	processed, _ := f.GetCellValue(CandidatesSheet, "K2")
	require.Equal(t, "2024-03-01 10:30", processed)

	department, _ := f.GetCellValue(CandidatesSheet, "D3")
	require.Empty(t, department)
}

func TestWriteCandidates_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().WriteCandidates(context.Background(), &buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(CandidatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	require.Equal(t, "candidates-20240301.xlsx", FileName("20240301"))
}
