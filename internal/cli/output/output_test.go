package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableData(t *testing.T) {
	table := NewTableData("ID", "TYPE")

	assert.Equal(t, []string{"ID", "TYPE"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("a1", "ramfs")
	table.AddRow("b2", "rampool")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a1", "ramfs"}, rows[0])
	assert.Equal(t, []string{"b2", "rampool"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Type", "Mounts")
	table.AddRow("ramfs", "2")
	table.AddRow("rampool", "1")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "MOUNTS")
	assert.Contains(t, out, "ramfs")
	assert.Contains(t, out, "rampool")
}

func TestPrinterFormats(t *testing.T) {
	payload := map[string]string{"type": "ramfs"}

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON).Print(payload))

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML).Print(payload))
		assert.Contains(t, buf.String(), "type: ramfs")
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(payload))
		assert.Contains(t, buf.String(), `"type": "ramfs"`)
	})

	t.Run("TableRenderer", func(t *testing.T) {
		table := NewTableData("NAME")
		table.AddRow("default")

		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(table))
		assert.Contains(t, buf.String(), "default")
	})
}

func TestPrinterHelpers(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable)

	assert.Equal(t, FormatTable, printer.Format())

	printer.Println("mounted")
	printer.Printf("%d nodes\n", 4)
	assert.Contains(t, buf.String(), "mounted")
	assert.Contains(t, buf.String(), "4 nodes")
}
