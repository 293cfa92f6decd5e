// Package render writes extracted records for human or machine consumption.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/prodmig/internal/extract"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Format selects an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatTSV   Format = "tsv"
	FormatYAML  Format = "yaml"
	FormatSQL   Format = "sql"
)

// Formats lists every supported format, in help-text order.
var Formats = []Format{FormatTable, FormatTSV, FormatYAML, FormatSQL}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected table, tsv, yaml or sql): %w", s, prodmig.ErrInvalidConfig)
}

var columns = []string{"ITEM ID", "ITEM NAME", "ORIGINAL PRICE", "SELLING PRICE"}

// Write renders result to w in the given format. styled only affects
// FormatTable; the other formats are byte-stable.
func Write(w io.Writer, format Format, result prodmig.ExtractResult, styled bool) error {
	switch format {
	case FormatTable:
		return writeTable(w, result.Records, styled)
	case FormatTSV:
		return writeTSV(w, result.Records)
	case FormatYAML:
		return writeYAML(w, result)
	case FormatSQL:
		return writeSQL(w, result.Records)
	default:
		return fmt.Errorf("unknown output format %q: %w", format, prodmig.ErrInvalidConfig)
	}
}

func writeTable(w io.Writer, records []prodmig.Record, styled bool) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ItemID, r.ItemName, r.OriginalPrice.String(), r.SellingPrice.String()})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...).
		Rows(rows...)

	if styled {
		t = t.BorderStyle(borderStyle).StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2:
				return priceStyle
			default:
				return cellStyle
			}
		})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d record(s)\n", len(records))
	return err
}

// writeTSV writes a header line and one line per record. Tabs and line
// breaks inside a name are escaped so every record stays on one line.
func writeTSV(w io.Writer, records []prodmig.Record) error {
	escaper := strings.NewReplacer("\\", `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

	var b strings.Builder
	b.WriteString("item_id\titem_name\toriginal_price\tselling_price\n")
	for _, r := range records {
		b.WriteString(escaper.Replace(r.ItemID))
		b.WriteByte('\t')
		b.WriteString(escaper.Replace(r.ItemName))
		b.WriteByte('\t')
		b.WriteString(r.OriginalPrice.String())
		b.WriteByte('\t')
		b.WriteString(r.SellingPrice.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type yamlRecord struct {
	ItemID        string `yaml:"item_id"`
	ItemName      string `yaml:"item_name"`
	OriginalPrice string `yaml:"original_price"`
	SellingPrice  string `yaml:"selling_price"`
}

type yamlStats struct {
	Lines        int   `yaml:"lines"`
	Candidates   int   `yaml:"candidates"`
	Records      int   `yaml:"records"`
	SkippedLines []int `yaml:"skipped_lines,omitempty"`
}

type yamlDocument struct {
	Encoding string       `yaml:"encoding"`
	Stats    yamlStats    `yaml:"stats"`
	Records  []yamlRecord `yaml:"records"`
}

// Prices are emitted as strings so no YAML reader turns them into floats.
func writeYAML(w io.Writer, result prodmig.ExtractResult) error {
	doc := yamlDocument{
		Encoding: result.Encoding,
		Stats: yamlStats{
			Lines:        result.Stats.Lines,
			Candidates:   result.Stats.Candidates,
			Records:      len(result.Records),
			SkippedLines: result.Stats.SkippedLines,
		},
		Records: make([]yamlRecord, 0, len(result.Records)),
	}
	for _, r := range result.Records {
		doc.Records = append(doc.Records, yamlRecord{
			ItemID:        r.ItemID,
			ItemName:      r.ItemName,
			OriginalPrice: r.OriginalPrice.String(),
			SellingPrice:  r.SellingPrice.String(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode records as YAML: %w", err)
	}
	return enc.Close()
}

// writeSQL writes each record as a value-tuple line the extractor reads back
// to the same record. Row ids are sequential from 1.
func writeSQL(w io.Writer, records []prodmig.Record) error {
	var b strings.Builder
	for i, r := range records {
		b.WriteString(extract.FormatTuple(extract.TupleFields{RowID: strconv.Itoa(i + 1)}, r))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
