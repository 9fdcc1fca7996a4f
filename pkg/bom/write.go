package bom

import (
	"encoding/csv"
	"io"
	"math"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/units"
)

// Header is the column header of tabular BOM output.
var Header = []string{"Id", "Description", "Qty", "Unit", "Designators", "Manufacturer", "MPN", "PN", "Notes"}

// WriteTSV writes entries as tab-separated values with a header row.
func WriteTSV(w io.Writer, entries []Entry) error {
	return write(w, '\t', entries)
}

// WriteCSV writes entries as comma-separated values with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	return write(w, ',', entries)
}

func write(w io.Writer, comma rune, entries []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row returns the columns of e in Header order.
func Row(e Entry) []string {
	return []string{
		e.Designator,
		e.Description,
		FormatQty(e.Qty),
		e.Unit,
		strings.Join(e.Designators, ", "),
		e.Manufacturer,
		e.MPN,
		e.PN,
		strings.Join(e.Notes, "; "),
	}
}

// FormatQty rounds away float noise from summed lengths.
func FormatQty(q float64) string {
	return units.FormatValue(math.Round(q*1e6) / 1e6)
}
