package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"renewalboard/export"
	"renewalboard/manager"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the manager table to a .csv or .xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := strings.ToLower(filepath.Ext(exportOut))
		if ext != ".csv" && ext != ".xlsx" {
			return eris.Errorf("export: unsupported file extension %q", ext)
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.managers.List(cmd.Context(), manager.ListFilter{})
		if err != nil {
			return err
		}

		if err := writeExportFile(exportOut, recs, a.server().exportOptions()); err != nil {
			return err
		}

		zap.L().Info("export written", zap.String("path", exportOut), zap.Int("rows", len(recs)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "renewals_q1.csv", "output file (.csv or .xlsx)")
	rootCmd.AddCommand(exportCmd)
}

// writeExportFile picks the format from the extension of path. The file is
// closed before returning so a failed flush is reported.
func writeExportFile(path string, recs []manager.Record, opts export.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrap(cerr, "export: close file")
		}
	}()

	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return export.WriteXLSX(f, recs, opts)
	}
	return export.WriteCSV(f, recs, opts)
}
