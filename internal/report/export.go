package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"github.com/example/placement-portal/internal/application"
)

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet = "Summary"
	reportsSheet = "Reports"
	dateLayout   = "2006-01-02"
)

var reportColumns = []string{
	"Drive",
	"Company",
	"Location",
	"Start Date",
	"End Date",
	"Participants",
	"Interviews",
	"Offers Made",
	"Students Placed",
	"Summary",
}

// Filename names the download for exports. A single report is named after
// its drive.
func Filename(exports []application.ReportExport) string {
	if len(exports) == 1 {
		name := exports[0].Drive.Title
		if strings.TrimSpace(name) == "" {
			name = exports[0].Drive.CompanyName
		}
		if s := slug.Make(name); s != "" {
			return "report-" + s + ".xlsx"
		}
		return "report-" + exports[0].Report.ID + ".xlsx"
	}
	return "placement-reports.xlsx"
}

// Write renders exports as a workbook with a Summary sheet and a Reports
// sheet and writes it to w.
func Write(w io.Writer, exports []application.ReportExport, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(reportsSheet); err != nil {
		return fmt.Errorf("create reports sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, exports, generatedAt, headerStyle); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeReports(f, exports, headerStyle); err != nil {
		return fmt.Errorf("write reports sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, exports []application.ReportExport, generatedAt time.Time, headerStyle int) error {
	var participants, interviews, offers, placed int
	for _, e := range exports {
		participants += e.Report.ParticipantCount
		interviews += e.Report.InterviewCount
		offers += e.Report.OffersMade
		placed += e.Report.StudentsPlaced
	}

	rows := [][]interface{}{
		{"Placement Report"},
		{"Generated", generatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Reports", len(exports)},
		{"Participants", participants},
		{"Interviews", interviews},
		{"Offers Made", offers},
		{"Students Placed", placed},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeReports(f *excelize.File, exports []application.ReportExport, headerStyle int) error {
	header := make([]interface{}, len(reportColumns))
	for i, column := range reportColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(reportsSheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(reportColumns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(reportsSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, e := range exports {
		end := ""
		if e.Report.EndDate != nil {
			end = e.Report.EndDate.Format(dateLayout)
		}
		row := []interface{}{
			e.Drive.Title,
			e.Drive.CompanyName,
			e.Drive.Location,
			e.Report.StartDate.Format(dateLayout),
			end,
			e.Report.ParticipantCount,
			e.Report.InterviewCount,
			e.Report.OffersMade,
			e.Report.StudentsPlaced,
			e.Report.Summary,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reportsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(reportsSheet, "A", "C", 22); err != nil {
		return err
	}
	return f.SetColWidth(reportsSheet, "J", "J", 48)
}
