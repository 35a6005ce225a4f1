// Package export renders inquiry lists as downloadable CSV and XLSX files
// for the admin backoffice.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

// Columns is the fixed export header, shared by both formats so spreadsheets
// and CSV imports line up.
var Columns = []string{
	"ID", "Created At", "Client Type", "First Name", "Last Name", "Email",
	"Phone", "Address", "Services", "Budget", "Timeline", "Surface",
	"Path", "Status", "Payment Status", "Amount (cents)", "Paid At",
	"Consultation Duration", "Roadmap Report", "Submitted At",
}

func row(inq *domain.Inquiry) []string {
	return []string{
		inq.ID,
		fmtTime(&inq.CreatedAt),
		string(inq.ClientType),
		inq.FirstName,
		inq.LastName,
		inq.Email,
		inq.Phone,
		inq.Address,
		strings.Join(inq.SelectedServices, "; "),
		inq.Budget,
		string(inq.Timeline),
		inq.Surface,
		string(inq.SelectedPath),
		string(inq.Status),
		string(inq.PaymentStatus),
		fmt.Sprintf("%d", inq.AmountDue),
		fmtTime(inq.PaidAt),
		string(inq.Consultation.Duration),
		fmt.Sprintf("%t", inq.Consultation.RoadmapReport),
		fmtTime(inq.SubmittedAt),
	}
}

func fmtTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// WriteCSV streams the inquiries as CSV with the fixed header.
func WriteCSV(w io.Writer, inquiries []domain.Inquiry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range inquiries {
		if err := cw.Write(row(&inquiries[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the inquiries as a single-sheet workbook.
func WriteXLSX(w io.Writer, inquiries []domain.Inquiry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inquiries"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := range inquiries {
		cells := row(&inquiries[i])
		vals := make([]any, len(cells))
		for j, c := range cells {
			vals[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.Write(w)
}
