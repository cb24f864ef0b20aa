package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/recruitstack/recruitstack/internal/models"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const (
	CandidatesSheet = "Candidates"
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var candidateColumns = []struct {
	header string
	width  float64
}{
	{"Full name", 28},
	{"Email", 32},
	{"Phone", 16},
	{"Department", 24},
	{"Education level", 20},
	{"Hierarchical level", 18},
	{"Relevance score", 14},
	{"Skills", 40},
	{"Executive summary", 60},
	{"Resume", 30},
	{"Processed at", 20},
}

// ExcelExporter writes candidate lists as an xlsx workbook
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

func (e *ExcelExporter) WriteCandidates(ctx context.Context, w io.Writer, candidates []models.Candidate) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ExcelExporter.WriteCandidates")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("candidates", len(candidates))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CandidatesSheet); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to rename sheet")
	}

	if err := writeHeader(f); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	for i, candidate := range candidates {
		if err := writeCandidateRow(f, i+2, candidate); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrapf(err, "failed to write candidate %s", candidate.ID)
		}
	}

	if len(candidates) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(candidateColumns), len(candidates)+1)
		if err := f.AutoFilter(CandidatesSheet, "A1:"+lastCell, nil); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(err, "failed to set auto filter")
		}
	}

	if err := f.Write(w); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeHeader(f *excelize.File) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	for i, column := range candidateColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(CandidatesSheet, colName, colName, column.width); err != nil {
			return errors.Wrap(err, "failed to set column width")
		}
		if err := f.SetCellValue(CandidatesSheet, cell, column.header); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
		if err := f.SetCellStyle(CandidatesSheet, cell, cell, headerStyle); err != nil {
			return errors.Wrap(err, "failed to style header")
		}
	}

	return f.SetPanes(CandidatesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeCandidateRow(f *excelize.File, row int, candidate models.Candidate) error {
	values := []interface{}{
		candidate.FullName,
		candidate.Email,
		utils.GetOrDefault(candidate.Phone, ""),
		utils.GetOrDefault(candidate.Department, ""),
		utils.GetOrDefault(candidate.EducationLevel, ""),
		utils.GetOrDefault(candidate.HierarchicalLevel, ""),
		candidate.RelevanceScore,
		strings.Join(candidate.Skills, ", "),
		utils.GetOrDefault(candidate.ExecutiveSummary, ""),
		utils.GetOrDefault(candidate.ResumeURL, ""),
		candidate.ProcessedAt.Format("2006-01-02 15:04"),
	}

	startCell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(CandidatesSheet, startCell, &values)
}

// FileName is the download name for an export produced at the given timestamp
func FileName(timestamp string) string {
	return fmt.Sprintf("candidates-%s.xlsx", timestamp)
}
