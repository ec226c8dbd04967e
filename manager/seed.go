package manager

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed seed_q1.yaml
var defaultSeed []byte

type seedFile struct {
	Managers []seedRow `yaml:"managers"`
}

type seedRow struct {
	Name    string  `yaml:"name"`
	Month1  int     `yaml:"month1"`
	Month2  int     `yaml:"month2"`
	Month3  int     `yaml:"month3"`
	LatePct float64 `yaml:"late_pct"`
	Managed int     `yaml:"managed"`
	Quality int     `yaml:"quality"`
}

// LoadSeed decodes a YAML seed dataset.
func LoadSeed(r io.Reader) ([]NewRecord, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, eris.Wrap(err, "manager: decode seed")
	}

	rows := make([]NewRecord, 0, len(f.Managers))
	for _, m := range f.Managers {
		rows = append(rows, NewRecord{
			Name:           m.Name,
			RenewalsMonth1: m.Month1,
			RenewalsMonth2: m.Month2,
			RenewalsMonth3: m.Month3,
			LatePercentage: m.LatePct,
			ManagedCount:   m.Managed,
			QualityScore:   m.Quality,
		})
	}
	return rows, nil
}

// LoadSeedFile reads the seed dataset at path, or the embedded Q1 dataset
// when path is empty.
func LoadSeedFile(path string) ([]NewRecord, error) {
	if path == "" {
		return DefaultSeed()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "manager: open seed %s", path)
	}
	defer f.Close()

	return LoadSeed(f)
}

// DefaultSeed returns the embedded Q1 dataset.
func DefaultSeed() ([]NewRecord, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}
