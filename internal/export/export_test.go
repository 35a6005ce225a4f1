package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/atelierhaus/atelier-backend/internal/domain"
)

func sampleInquiries() []domain.Inquiry {
	paid := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	submitted := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	return []domain.Inquiry{
		{
			ID:               "inq-1",
			ClientType:       domain.ClientBusiness,
			FirstName:        "Lena",
			LastName:         "Vogt",
			Email:            "lena@example.com",
			SelectedServices: domain.StringList{"new-build", "interior"},
			Budget:           "250k-500k",
			Timeline:         domain.TimelineSixMonths,
			SelectedPath:     domain.PathConsult,
			Status:           domain.StatusPaid,
			PaymentStatus:    domain.PaymentPaid,
			AmountDue:        34900,
			PaidAt:           &paid,
			SubmittedAt:      &submitted,
			Consultation: domain.Consultation{
				Duration:      domain.Duration90,
				RoadmapReport: true,
			},
		},
		{
			ID:         "inq-2",
			ClientType: domain.ClientPrivate,
			Email:      "raw@example.com",
			Status:     domain.StatusDraft,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleInquiries()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}
	for i, rec := range records {
		if len(rec) != len(Columns) {
			t.Fatalf("row %d has %d cells, want %d", i, len(rec), len(Columns))
		}
	}
	if records[0][0] != "ID" || records[0][len(Columns)-1] != "Submitted At" {
		t.Fatalf("header = %v", records[0])
	}

	first := records[1]
	if first[0] != "inq-1" || first[5] != "lena@example.com" {
		t.Fatalf("row 1 identity cells = %v", first[:6])
	}
	if first[8] != "new-build; interior" {
		t.Fatalf("services cell = %q", first[8])
	}
	if first[16] != "2026-03-14T09:30:00Z" {
		t.Fatalf("paid_at cell = %q", first[16])
	}
	if first[18] != "true" {
		t.Fatalf("roadmap cell = %q", first[18])
	}

	second := records[2]
	if second[16] != "" || second[19] != "" {
		t.Fatalf("nil times should render empty, got %q / %q", second[16], second[19])
	}
	if second[15] != "0" {
		t.Fatalf("amount cell = %q", second[15])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("rows = %d, want header only", len(records))
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleInquiries()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Inquiries" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("Inquiries")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "inq-1" || rows[2][0] != "inq-2" {
		t.Fatalf("data rows = %q / %q", rows[1][0], rows[2][0])
	}
}
