package spreadsheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"byabshik_backend/internal/leads/contacts"
	"byabshik_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func TestParseCSVMatchesHeaderSynonyms(t *testing.T) {
	input := "\ufeffRecipient Name,Recipient_Phone,Full Address\n" +
		"Rahim,+8801711000001,Dhaka\n" +
		",,\n" +
		"Karim,123,Khulna\n" +
		",01811000002,\n"

	rows, err := Parse("upload.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 non-blank rows, got %d", len(rows))
	}
	if rows[0].Phone != "+8801711000001" || rows[0].Name != "Rahim" || rows[0].Address != "Dhaka" {
		t.Errorf("unexpected first row %+v", rows[0])
	}

	leads := ToLeads(rows, time.Now())
	if len(leads) != 2 {
		t.Fatalf("expected 2 valid leads, got %d", len(leads))
	}
	if leads[0].Phone != "01711000001" || leads[0].Status != domain.StatusPending || leads[0].ModeratorID != nil {
		t.Errorf("unexpected first lead %+v", leads[0])
	}
	if leads[1].CustomerName != domain.DefaultCustomerName {
		t.Errorf("expected default name, got %q", leads[1].CustomerName)
	}
}

func TestLookupFallsThroughEmptySynonym(t *testing.T) {
	input := "phone,mobile\n,01911000003\n"
	rows, err := Parse("leads.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].Phone != "01911000003" {
		t.Fatalf("expected mobile column to be used, got %+v", rows)
	}
}

func TestParseWorkbookFirstSheet(t *testing.T) {
	xl := excelize.NewFile()
	sheet := xl.GetSheetName(0)
	_ = xl.SetSheetRow(sheet, "A1", &[]string{"Customer Name", "Phone Number", "Location"})
	_ = xl.SetSheetRow(sheet, "A2", &[]string{"Salma", "01611000004", "Sylhet"})
	if _, err := xl.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = xl.SetSheetRow("Other", "A1", &[]string{"phone"})
	_ = xl.SetSheetRow("Other", "A2", &[]string{"01511000005"})
	buf, err := xl.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := Parse("leads.xlsx", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].Phone != "01611000004" || rows[0].Name != "Salma" || rows[0].Address != "Sylhet" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	if _, err := Parse("leads.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Parse("leads.xlsx", strings.NewReader("not a zip")); !errors.Is(err, ErrUnreadableWorkbook) {
		t.Fatalf("expected ErrUnreadableWorkbook for corrupt workbook, got %v", err)
	}
	truncated := append(append([]byte{}, oleSignature...), make([]byte, 64)...)
	if _, err := Parse("leads.xls", bytes.NewReader(truncated)); !errors.Is(err, ErrUnreadableWorkbook) {
		t.Fatalf("expected ErrUnreadableWorkbook for truncated xls, got %v", err)
	}
}

func TestParseLegacyWorkbookFirstSheet(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "leads.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	rows, err := Parse("leads.XLS", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 non-blank rows from the first sheet, got %+v", rows)
	}
	if rows[0].Phone != "+8801711000001" || rows[0].Name != "Rahim" || rows[0].Address != "Dhaka" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].Phone != "01811000002" || rows[1].Address != "Khulna" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
	if rows[2].Phone != "01911000003" || rows[2].Name != "" {
		t.Errorf("unexpected third row %+v", rows[2])
	}

	leads := ToLeads(rows, time.Now())
	if len(leads) != 3 || leads[0].Phone != "01711000001" || leads[2].CustomerName != domain.DefaultCustomerName {
		t.Fatalf("unexpected leads %+v", leads)
	}
}

func TestParseSniffsWorkbookContent(t *testing.T) {
	xl := excelize.NewFile()
	_ = xl.SetSheetRow(xl.GetSheetName(0), "A1", &[]string{"phone"})
	_ = xl.SetSheetRow(xl.GetSheetName(0), "A2", &[]string{"01611000004"})
	buf, err := xl.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := Parse("exported.xls", bytes.NewReader(buf.Bytes()))
	if err != nil || len(rows) != 1 || rows[0].Phone != "01611000004" {
		t.Fatalf("xlsx content named .xls: rows=%+v err=%v", rows, err)
	}

	legacy, err := os.ReadFile(filepath.Join("testdata", "leads.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	rows, err = Parse("renamed.xlsx", bytes.NewReader(legacy))
	if err != nil || len(rows) != 3 {
		t.Fatalf("xls content named .xlsx: rows=%+v err=%v", rows, err)
	}
}

func TestWriteContacts(t *testing.T) {
	mod := uuid.New()
	status := domain.StatusConfirmed
	days := 4
	list := []contacts.Contact{
		{Phone: "01711000001", Name: "Rahim", CurrentStatus: &status, ModeratorID: &mod, DaysSinceCall: &days, TotalOrders: 2},
		{Phone: "01811000002", Name: "Karim", TotalOrders: 1},
	}

	data, err := WriteContacts(list, map[uuid.UUID]string{mod: "Nadia"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = xl.Close() }()
	rows, err := xl.GetRows(contactsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][3] != "confirmed" || rows[1][4] != "Nadia" || rows[1][6] != "4" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][3] != contacts.FilterUnassigned {
		t.Errorf("expected unassigned label, got %q", rows[2][3])
	}
}
