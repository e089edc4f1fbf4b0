package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Disease is one catalog entry. Precautions keep their file order.
type Disease struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Precautions []string `yaml:"precautions"`
}

// Catalog maps a disease index to its display data. Index i lines up with class i of
// the classifier or row i of the similarity matrix.
type Catalog struct {
	diseases []Disease
	byName   map[string]int
}

func NewCatalog(diseases []Disease) *Catalog {
	c := &Catalog{
		diseases: diseases,
		byName:   make(map[string]int, len(diseases)),
	}
	for i, d := range diseases {
		key := nameKey(d.Name)
		if _, dup := c.byName[key]; !dup {
			c.byName[key] = i
		}
	}
	return c
}

func (c *Catalog) Len() int { return len(c.diseases) }

func (c *Catalog) At(i int) (Disease, bool) {
	if i < 0 || i >= len(c.diseases) {
		return Disease{}, false
	}
	return c.diseases[i], true
}

// Lookup finds a disease by name, ignoring case and surrounding spaces.
func (c *Catalog) Lookup(name string) (Disease, bool) {
	i, ok := c.byName[nameKey(name)]
	if !ok {
		return Disease{}, false
	}
	return c.diseases[i], true
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LoadCatalog reads a CSV or YAML catalog, picked by file extension.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLCatalog(data)
	default:
		return parseCSVCatalog(data)
	}
}

func parseYAMLCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Diseases []Disease `yaml:"diseases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Diseases) == 0 {
		return nil, fmt.Errorf("catalog has no diseases")
	}
	return NewCatalog(doc.Diseases), nil
}

// parseCSVCatalog expects a `disease` column, an optional `description` column and
// any number of `precaution_N` columns. Latin-1 input is accepted.
func parseCSVCatalog(data []byte) (*Catalog, error) {
	if !utf8.Valid(data) {
		data = latin1ToUTF8(data)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	nameCol, descCol := -1, -1
	var precautionCols []int
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case h == "disease":
			nameCol = i
		case h == "description":
			descCol = i
		case strings.HasPrefix(h, "precaution_"):
			precautionCols = append(precautionCols, i)
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("catalog is missing the disease column")
	}

	var diseases []Disease
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", len(diseases)+1, err)
		}

		d := Disease{Name: strings.TrimSpace(field(rec, nameCol))}
		if descCol >= 0 {
			d.Description = strings.TrimSpace(field(rec, descCol))
		}
		for _, col := range precautionCols {
			if p := strings.TrimSpace(field(rec, col)); p != "" && !strings.EqualFold(p, "nan") {
				d.Precautions = append(d.Precautions, p)
			}
		}
		diseases = append(diseases, d)
	}

	if len(diseases) == 0 {
		return nil, fmt.Errorf("catalog has no diseases")
	}
	return NewCatalog(diseases), nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func latin1ToUTF8(data []byte) []byte {
	buf := make([]rune, len(data))
	for i, b := range data {
		buf[i] = rune(b)
	}
	return []byte(string(buf))
}
