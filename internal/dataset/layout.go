package dataset

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/affordability-cli/internal/normalize"
	"github.com/sells-group/affordability-cli/internal/tabular"
)

const (
	// DefaultAnchor is the header label that marks the CMS header row.
	DefaultAnchor = "Area of Residence"

	// DefaultScanLimit bounds the header search to the top of the sheet.
	DefaultScanLimit = 60
)

// Layout tells the cleaner where the header is and which columns it needs.
type Layout struct {
	Anchor    string              `yaml:"anchor"`
	ScanLimit int                 `yaml:"scan_limit"`
	Fields    []tabular.FieldSpec `yaml:"fields"`
}

// CMSLayout is the layout of the CMS Medicare program statistics summary
// (utilization per person by area of residence).
func CMSLayout() Layout {
	return Layout{
		Anchor:    DefaultAnchor,
		ScanLimit: DefaultScanLimit,
		Fields: []tabular.FieldSpec{
			{Name: normalize.FieldRegion, Phrases: []string{"area of residence"}, Required: true},
			{Name: normalize.FieldCost, Phrases: []string{"program payments", "per person", "utilization"}, Required: true},
			{Name: normalize.FieldPopulation, Phrases: []string{"total", "original", "part a", "part b", "enrollee"}},
		},
	}
}

// coreFields must resolve to a column for every cleaned record.
var coreFields = []string{normalize.FieldRegion, normalize.FieldCost}

// Validate checks that the layout can drive the cleaner. The region and cost
// fields must be present and required.
func (l Layout) Validate() error {
	if l.Anchor == "" {
		return eris.New("dataset: layout: anchor is empty")
	}
	if l.ScanLimit <= 0 {
		return eris.Errorf("dataset: layout: scan_limit must be positive, got %d", l.ScanLimit)
	}

	seen := make(map[string]tabular.FieldSpec, len(l.Fields))
	for _, f := range l.Fields {
		if f.Name == "" {
			return eris.New("dataset: layout: field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return eris.Errorf("dataset: layout: duplicate field %q", f.Name)
		}
		if len(f.Phrases) == 0 {
			return eris.Errorf("dataset: layout: field %q has no phrases", f.Name)
		}
		seen[f.Name] = f
	}
	for _, name := range coreFields {
		f, ok := seen[name]
		if !ok {
			return eris.Errorf("dataset: layout: missing %q field", name)
		}
		if !f.Required {
			return eris.Errorf("dataset: layout: field %q must be required", name)
		}
	}
	return nil
}

// LoadLayout reads a YAML layout file. Keys left out fall back to CMSLayout.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, eris.Wrapf(err, "dataset: read layout %s", path)
	}
	return ParseLayout(data)
}

// ParseLayout decodes a YAML layout. Keys left out fall back to CMSLayout.
// The region and cost fields are always required, whatever the file says.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, eris.Wrap(err, "dataset: parse layout")
	}

	def := CMSLayout()
	if l.Anchor == "" {
		l.Anchor = def.Anchor
	}
	if l.ScanLimit == 0 {
		l.ScanLimit = def.ScanLimit
	}
	if len(l.Fields) == 0 {
		l.Fields = def.Fields
	}
	for i := range l.Fields {
		if slices.Contains(coreFields, l.Fields[i].Name) {
			l.Fields[i].Required = true
		}
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
