package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"renewalboard/manager"
)

// SheetName is the name of the single sheet WriteXLSX produces.
const SheetName = "Managers"

// WriteXLSX writes the table as a one-sheet workbook. Counts are stored as
// numeric cells; percentages keep their formatted text.
func WriteXLSX(w io.Writer, rows []manager.Record, opts Options) error {
	opts = opts.withDefaults()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header(opts) {
		hr.AddCell().SetString(h)
	}

	for _, r := range rows {
		xr := sheet.AddRow()
		xr.AddCell().SetString(r.Name)
		for _, v := range []int{r.RenewalsMonth1, r.RenewalsMonth2, r.RenewalsMonth3, r.SumRenewals()} {
			xr.AddCell().SetInt(v)
		}
		text := row(r, opts)
		xr.AddCell().SetString(text[5])
		xr.AddCell().SetString(text[6])
		xr.AddCell().SetString(r.Classification)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
