package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/prodmig/internal/extract"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

func sampleResult() prodmig.ExtractResult {
	return prodmig.ExtractResult{
		Encoding: "latin-1",
		Stats:    prodmig.ExtractStats{Lines: 10, Candidates: 3, SkippedLines: []int{7}},
		Records: []prodmig.Record{
			{
				ItemID:        "SKU-1",
				ItemName:      "Widget",
				OriginalPrice: decimal.RequireFromString("9.50"),
				SellingPrice:  decimal.RequireFromString("12"),
			},
			{
				ItemID:        "SKU-2",
				ItemName:      "O'Brien's Café\tspecial",
				OriginalPrice: decimal.RequireFromString("0.99"),
				SellingPrice:  decimal.RequireFromString("-1.5"),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"TSV", FormatTSV, false},
		{" yaml ", FormatYAML, false},
		{"sql", FormatSQL, false},
		{"json", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, prodmig.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite_TSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTSV, sampleResult(), false))

	want := "item_id\titem_name\toriginal_price\tselling_price\n" +
		"SKU-1\tWidget\t9.5\t12\n" +
		"SKU-2\tO'Brien's Café\\tspecial\t0.99\t-1.5\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleResult(), false))

	var doc yamlDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "latin-1", doc.Encoding)
	assert.Equal(t, 10, doc.Stats.Lines)
	assert.Equal(t, 2, doc.Stats.Records)
	assert.Equal(t, []int{7}, doc.Stats.SkippedLines)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "O'Brien's Café\tspecial", doc.Records[1].ItemName)
	assert.Equal(t, "9.5", doc.Records[0].OriginalPrice)
	assert.Contains(t, buf.String(), `original_price: "9.5"`)
}

func TestWrite_SQLReadsBackToSameRecords(t *testing.T) {
	result := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatSQL, result, false))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(result.Records))
	assert.True(t, strings.HasPrefix(lines[0], "('1','','SKU-1','','Widget',9.5,12,NULL)"))
	assert.Contains(t, lines[1], "O''Brien''s")

	for i, line := range lines {
		got, ok := extract.ParseLine(line)
		require.True(t, ok, "line %d did not parse: %s", i+1, line)
		want := result.Records[i]
		assert.Equal(t, want.ItemID, got.ItemID)
		assert.Equal(t, want.ItemName, got.ItemName)
		assert.True(t, want.OriginalPrice.Equal(got.OriginalPrice))
		assert.True(t, want.SellingPrice.Equal(got.SellingPrice))
	}
}

func TestWrite_Table(t *testing.T) {
	for _, styled := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatTable, sampleResult(), styled))

		out := buf.String()
		assert.Contains(t, out, "ITEM ID")
		assert.Contains(t, out, "SKU-1")
		assert.Contains(t, out, "Widget")
		assert.Contains(t, out, "2 record(s)")
	}
}

func TestWrite_EmptyResult(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, Write(&buf, f, prodmig.ExtractResult{}, false))
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleResult(), false)
	assert.ErrorIs(t, err, prodmig.ErrInvalidConfig)
}
