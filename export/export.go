// Package export renders table rows as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/viktsys/playerstats/models"
)

const SheetName = "Daily"

// Header returns the column names for sources, in export order.
func Header(sources []string) []string {
	header := []string{"date"}
	for _, id := range sources {
		header = append(header, id+"_max", id+"_min")
	}
	for _, id := range sources {
		header = append(header, id+"_delta")
	}
	return header
}

// Sources returns every source present in rows, sorted.
func Sources(rows []models.TableRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for id := range r.Sources {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func record(r models.TableRow, sources []string) []*int64 {
	values := make([]*int64, 0, 3*len(sources))
	for _, id := range sources {
		values = append(values, r.Max(id), r.Min(id))
	}
	for _, id := range sources {
		values = append(values, r.Delta(id))
	}
	return values
}

func cell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// WriteCSV writes rows with a header line. Missing values are empty cells.
func WriteCSV(w io.Writer, sources []string, rows []models.TableRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header(sources)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range rows {
		line := []string{r.Date}
		for _, v := range record(r, sources) {
			line = append(line, cell(v))
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes rows to a single-sheet workbook. Missing values are left
// blank.
func WriteXLSX(w io.Writer, sources []string, rows []models.TableRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := Header(sources)
	for col, name := range header {
		if err := setCell(f, col, 1, name); err != nil {
			return err
		}
	}

	for i, r := range rows {
		rowNum := i + 2
		if err := setCell(f, 0, rowNum, r.Date); err != nil {
			return err
		}
		for col, v := range record(r, sources) {
			if v == nil {
				continue
			}
			if err := setCell(f, col+1, rowNum, *v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, name, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", name, err)
	}
	return nil
}
