package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	StoresSheet = "Stores"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var storeHeaders = []string{"ID", "Name", "Email", "Address", "Owner", "Average Rating", "Rating Count", "Created At"}

// WriteStores renders the store listing as a single-sheet workbook.
func WriteStores(w io.Writer, stores []model.StoreWithStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StoresSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(StoresSheet, "A1", &storeHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(StoresSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range stores {
		owner := ""
		if s.OwnerName != nil {
			owner = *s.OwnerName
		}
		var avg interface{} = ""
		if s.AverageRating != nil {
			avg = roundTo2(*s.AverageRating)
		}
		row := []interface{}{
			s.ID,
			s.Name,
			s.Email,
			s.Address,
			owner,
			avg,
			s.RatingCount,
			s.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(StoresSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(StoresSheet, "B", "E", 30); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// StoresWorkbook returns the rendered workbook bytes.
func StoresWorkbook(stores []model.StoreWithStats) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteStores(&buf, stores); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func roundTo2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// StoreRow is one importable store from a seed workbook.
type StoreRow struct {
	Line       int
	Name       string
	Email      string
	Address    string
	OwnerEmail string
}

// ReadStores parses the first sheet of a seed workbook. The first row is a
// header; columns are name, email, address and an optional owner email.
// Rows with fewer than three columns or blank required cells are returned in skipped.
func ReadStores(r io.Reader) (rows []StoreRow, skipped []int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	all, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	for i, cells := range all[1:] {
		line := i + 2
		if len(cells) < 3 {
			skipped = append(skipped, line)
			continue
		}
		row := StoreRow{
			Line:    line,
			Name:    strings.TrimSpace(cells[0]),
			Email:   strings.TrimSpace(cells[1]),
			Address: strings.TrimSpace(cells[2]),
		}
		if len(cells) > 3 {
			row.OwnerEmail = strings.TrimSpace(cells[3])
		}
		if row.Name == "" || row.Email == "" || row.Address == "" {
			skipped = append(skipped, line)
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
