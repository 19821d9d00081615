// Package sheet reads and writes the procurement spreadsheet format:
// sequence, description, type label, four dimensional columns, edge
// count, supplier channel, with shank diameter appended on export.
package sheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/toolspec-cli/internal/model"
)

var header = []string{
	"Seq", "Description", "Type", "Diameter", "Corner Radius",
	"Flute Length", "Overall Length", "Edge Count", "Supplier", "Shank Diameter",
}

// exportSlots is the column order of the attribute cells (import columns
// 4-8 plus the appended shank column).
var exportSlots = []model.Slot{
	model.SlotDiameter, model.SlotCornerRadius, model.SlotFluteLength,
	model.SlotOverallLength, model.SlotEdgeCount,
}

// ReadRecords loads records from the first sheet of an xlsx file. A
// leading header row (non-numeric first cell) is skipped. Cells holding
// the Sentinel are treated as absent so a re-imported export can be
// resolved again.
func ReadRecords(path string) ([]model.Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("sheet: file has no sheets")
	}

	var records []model.Record
	for i, row := range f.Sheets[0].Rows {
		cells := rowToStrings(row)
		if isEmptyRow(cells) {
			continue
		}

		seq, err := strconv.Atoi(cell(cells, 0))
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, eris.Errorf("sheet: row %d: bad sequence %q", i+1, cell(cells, 0))
		}

		rec := model.Record{
			Index:         len(records),
			Sequence:      seq,
			Description:   cell(cells, 1),
			TypeLabel:     cell(cells, 2),
			Diameter:      attrCell(cells, 3),
			CornerRadius:  attrCell(cells, 4),
			FluteLength:   attrCell(cells, 5),
			OverallLength: attrCell(cells, 6),
			EdgeCount:     attrCell(cells, 7),
			Channel:       cell(cells, 8),
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, eris.New("sheet: no records found")
	}
	return records, nil
}

// WriteRecords exports records to a file with a header row. Attribute
// cells that are still absent are written as the Sentinel, verbatim.
func WriteRecords(path string, records []model.Record) error {
	f, err := buildFile(records)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "sheet: save file")
	}
	return nil
}

// WriteRecordsTo streams the export to w (the HTTP download path).
func WriteRecordsTo(w io.Writer, records []model.Record) error {
	f, err := buildFile(records)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "sheet: write file")
	}
	return nil
}

func buildFile(records []model.Record) (*xlsx.File, error) {
	f := xlsx.NewFile()
	s, err := f.AddSheet("Records")
	if err != nil {
		return nil, eris.Wrap(err, "sheet: add sheet")
	}

	hr := s.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}

	for _, rec := range records {
		row := s.AddRow()
		row.AddCell().Value = strconv.Itoa(rec.Sequence)
		row.AddCell().Value = rec.Description
		row.AddCell().Value = rec.TypeLabel
		for _, slot := range exportSlots {
			row.AddCell().Value = exportValue(rec.Field(slot))
		}
		row.AddCell().Value = rec.Channel
		row.AddCell().Value = exportValue(rec.ShankDiameter)
	}

	return f, nil
}

func exportValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.Sentinel
	}
	return v
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// attrCell treats the Sentinel as absent on import.
func attrCell(cells []string, i int) string {
	v := cell(cells, i)
	if v == model.Sentinel {
		return ""
	}
	return v
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out
}
