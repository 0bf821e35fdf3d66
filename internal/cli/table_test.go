package cli

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf, "server", "tool", "description")
	tw.AppendRow(table.Row{"kubernetes", "pods_list", "List pods in a namespace"})
	tw.Render()

	out := buf.String()
	assert.Contains(t, out, "SERVER", "headers should be uppercased")
	assert.Contains(t, out, "TOOL")
	assert.Contains(t, out, "pods_list")
	assert.Contains(t, out, "List pods in a namespace")
}
