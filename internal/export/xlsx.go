package export

import (
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
)

const sheetName = "Sheet1"

// WriteXLSX writes t as a single sheet workbook, header in row 1.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()

	for col, h := range t.Headers {
		f.SetCellValue(sheetName, cellName(col, 1), h)
	}
	for i, row := range t.Rows {
		for col, v := range row {
			f.SetCellValue(sheetName, cellName(col, i+2), v)
		}
	}

	return f.Write(w)
}

// cellName converts a zero based column and one based row into "A1" form.
func cellName(col, row int) string {
	return columnName(col) + strconv.Itoa(row)
}

func columnName(col int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}
