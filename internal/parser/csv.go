package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/riostats/internal/doctree"
)

// CSVParser handles stat exports such as "label,value" sheets. The sheet
// becomes a table: one container per row and one text run per cell, with
// the first row as header cells.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := doctree.NewBuilder().SetTitle(strings.TrimSuffix(filename, ".csv"))
	if len(records) == 0 {
		return b.Tree(), nil
	}

	b.Open("table", doctree.RoleContainer)
	for i, row := range records {
		cell := "td"
		if i == 0 {
			cell = "th"
		}
		b.Open("tr", doctree.RoleContainer)
		for _, v := range row {
			b.Leaf(cell, doctree.RoleTextRun, v)
		}
		b.Close()
	}
	b.Close()

	return b.Tree(), nil
}
