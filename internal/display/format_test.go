package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"one bc7 4k mip chain", 22369621, "21 MiB"},
		{"negative", -5, "0 B"},
		{"1 GiB", 1 << 30, "1.0 GiB"},
		{"3 TiB", 3 << 40, "3.0 TiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestPrintBanner(t *testing.T) {
	var b bytes.Buffer
	PrintBanner(&b, "dev")
	out := b.String()
	assert.Contains(t, out, "|_|")
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "dev"))
}
