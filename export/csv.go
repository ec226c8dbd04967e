package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"renewalboard/manager"
)

// WriteCSV writes a header plus one line per record to w.
func WriteCSV(w io.Writer, rows []manager.Record, opts Options) error {
	opts = opts.withDefaults()
	cw := csv.NewWriter(w)

	if err := cw.Write(header(opts)); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for _, r := range rows {
		if err := cw.Write(row(r, opts)); err != nil {
			return eris.Wrapf(err, "export: csv row %d", r.ID)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: csv flush")
}
