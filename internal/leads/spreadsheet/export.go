package spreadsheet

import (
	"fmt"
	"strconv"
	"time"

	"byabshik_backend/internal/leads/contacts"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const contactsSheet = "Contacts"

var contactHeader = []string{
	"Phone", "Name", "Address", "Status", "Moderator",
	"Last Call", "Days Since Call", "Last Order", "Days Since Order", "Total Orders",
}

// WriteContacts renders contacts as an xlsx workbook. moderatorNames maps
// moderator ids to display names; unknown ids fall back to the id.
func WriteContacts(list []contacts.Contact, moderatorNames map[uuid.UUID]string) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), contactsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := xl.SetSheetRow(contactsSheet, "A1", &contactHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, c := range list {
		record := []string{
			c.Phone,
			c.Name,
			c.Address,
			statusLabel(c),
			moderatorLabel(c.ModeratorID, moderatorNames),
			dateCell(c.LastCallDate),
			intCell(c.DaysSinceCall),
			dateCell(c.LastOrderDate),
			intCell(c.DaysSinceOrder),
			strconv.Itoa(c.TotalOrders),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(contactsSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func statusLabel(c contacts.Contact) string {
	if c.CurrentStatus == nil {
		return contacts.FilterUnassigned
	}
	return string(*c.CurrentStatus)
}

func moderatorLabel(id *uuid.UUID, names map[uuid.UUID]string) string {
	if id == nil {
		return ""
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return id.String()
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
