// Package spreadsheet reads lead uploads and writes contact exports.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"byabshik_backend/internal/leads/domain"
	"byabshik_backend/platform/phone"
	"byabshik_backend/platform/sanitize"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .csv, .xlsx and .xls.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnreadableWorkbook is returned when a workbook upload is neither a
	// readable OOXML package nor a BIFF (Excel 97-2003) file.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

// oleSignature starts every compound-file (BIFF .xls) workbook.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Header synonyms, tried in order. Matching ignores case, whitespace and
// underscores.
var (
	phoneHeaders   = []string{"phone", "mobile", "number", "contact", "recipientphone", "customerphone", "phone_number"}
	nameHeaders    = []string{"name", "customer", "customername", "fullname", "recipientname", "receivername"}
	addressHeaders = []string{"address", "location", "fulladdress", "recipientaddress", "receiveraddress"}
)

// Row is one uploaded record after header mapping.
type Row struct {
	Phone   string
	Name    string
	Address string
}

// Parse reads rows from a CSV file or the first sheet of a workbook. The
// extension picks CSV or workbook; workbook content is sniffed, so a BIFF
// file saved as .xlsx or an OOXML file saved as .xls both read. The first
// row is the header.
func Parse(filename string, r io.Reader) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx", ".xls":
		records, err = readWorkbook(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return mapRecords(records), nil
}

// ToLeads converts rows into new unassigned pending leads. Rows whose phone
// does not normalize are dropped.
func ToLeads(rows []Row, now time.Time) []domain.Lead {
	out := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		key := phone.Normalize(row.Phone)
		if key == "" {
			continue
		}
		name := sanitize.Line(row.Name)
		if name == "" {
			name = domain.DefaultCustomerName
		}
		out = append(out, domain.Lead{
			ID:           uuid.New(),
			Phone:        key,
			CustomerName: name,
			Address:      sanitize.Line(row.Address),
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if bytes.HasPrefix(data, oleSignature) {
		return readLegacyWorkbook(data)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readLegacyWorkbook reads the first sheet of a BIFF workbook. The BIFF
// decoder panics on some malformed records, so panics become errors.
func readLegacyWorkbook(data []byte) (records [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			records, err = nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrUnreadableWorkbook)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: no worksheet found", ErrUnreadableWorkbook)
	}

	records = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		// Cells are indexed by absolute column so they line up with the
		// header row.
		rec := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			rec = append(rec, row.Col(c))
		}
		for len(rec) > 0 && rec[len(rec)-1] == "" {
			rec = rec[:len(rec)-1]
		}
		records = append(records, rec)
	}
	return records, nil
}

func mapRecords(records [][]string) []Row {
	if len(records) < 2 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = headerKey(h)
	}

	out := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		out = append(out, Row{
			Phone:   lookup(header, rec, phoneHeaders),
			Name:    lookup(header, rec, nameHeaders),
			Address: lookup(header, rec, addressHeaders),
		})
	}
	return out
}

// lookup returns the first non-empty cell whose header matches a synonym,
// trying synonyms in order.
func lookup(header, rec []string, synonyms []string) string {
	for _, syn := range synonyms {
		want := headerKey(syn)
		for i, h := range header {
			if h != want || i >= len(rec) {
				continue
			}
			if v := strings.TrimSpace(rec[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func headerKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '\ufeff':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
