package sheet

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/toolspec-cli/internal/model"
)

func writeFixture(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	s, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, row := range rows {
		r := s.AddRow()
		for _, v := range row {
			r.AddCell().Value = v
		}
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadRecords(t *testing.T) {
	path := writeFixture(t, [][]string{
		{"Seq", "Description", "Type", "Diameter", "Corner Radius", "Flute Length", "Overall Length", "Edge Count", "Supplier"},
		{"1", "SD1103-1000-035-10R1", "SOLID DRILL", "", "", "", "", "", "Seco"},
		{"", "", "", "", "", "", "", "", ""},
		{"2", "JS554100E2R050.0Z4", "SOLID ENDMILL", "10 mm", "#NA", "", "", "4", "Seco"},
	})

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Sequence)
	assert.Equal(t, "SD1103-1000-035-10R1", records[0].Description)
	assert.Equal(t, "SOLID DRILL", records[0].TypeLabel)
	assert.Equal(t, "Seco", records[0].Channel)
	assert.Empty(t, records[0].Diameter)

	assert.Equal(t, 2, records[1].Sequence)
	assert.Equal(t, "10 mm", records[1].Diameter)
	// A re-imported sentinel reads back as absent so it can be resolved
	// again.
	assert.Empty(t, records[1].CornerRadius)
	assert.Equal(t, "4", records[1].EdgeCount)

	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, 1, records[1].Index)
}

func TestReadRecordsNoHeader(t *testing.T) {
	path := writeFixture(t, [][]string{
		{"1", "ITEM-1", "SOLID ENDMILL", "", "", "", "", "", "Walter"},
	})

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ITEM-1", records[0].Description)
}

func TestReadRecordsBadSequence(t *testing.T) {
	path := writeFixture(t, [][]string{
		{"1", "ITEM-1", "SOLID ENDMILL", "", "", "", "", "", "Walter"},
		{"junk", "ITEM-2", "SOLID ENDMILL", "", "", "", "", "", "Walter"},
	})

	_, err := ReadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad sequence")
}

func TestReadRecordsEmptyFile(t *testing.T) {
	path := writeFixture(t, [][]string{
		{"Seq", "Description", "Type"},
	})
	_, err := ReadRecords(path)
	assert.Error(t, err)
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	in := []model.Record{
		{
			Sequence: 1, Description: "SD1103-1000-035-10R1", TypeLabel: "SOLID DRILL",
			Channel: "Seco", Diameter: "10.0 mm", OverallLength: "89 mm",
			EdgeCount: "2", ShankDiameter: "10 mm",
		},
		{
			Sequence: 2, Description: "UNRESOLVED", TypeLabel: "SOLID ENDMILL",
			Channel: "Walter",
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteRecords(path, in))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	rows := f.Sheets[0].Rows
	require.Len(t, rows, 3)

	assert.Equal(t, "Seq", rows[0].Cells[0].String())
	assert.Equal(t, "Shank Diameter", rows[0].Cells[9].String())

	first := rows[1]
	assert.Equal(t, "1", first.Cells[0].String())
	assert.Equal(t, "10.0 mm", first.Cells[3].String())
	assert.Equal(t, model.Sentinel, first.Cells[4].String(), "absent corner radius exports as the sentinel")
	assert.Equal(t, "89 mm", first.Cells[6].String())
	assert.Equal(t, "2", first.Cells[7].String())
	assert.Equal(t, "Seco", first.Cells[8].String())
	assert.Equal(t, "10 mm", first.Cells[9].String())

	second := rows[2]
	for _, col := range []int{3, 4, 5, 6, 7, 9} {
		assert.Equal(t, model.Sentinel, second.Cells[col].String(), "column %d", col)
	}

	// And the export must re-import cleanly.
	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "10.0 mm", records[0].Diameter)
	assert.Empty(t, records[1].Diameter)
}

func TestWriteRecordsTo(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRecordsTo(&buf, []model.Record{
		{Sequence: 1, Description: "ITEM", TypeLabel: "SOLID ENDMILL", Channel: "Seco"},
	})
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())

	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
