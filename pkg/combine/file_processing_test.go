package combine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileSection(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		readErr error
		want    string
	}{
		{
			name: "utf-8",
			data: []byte("héllo\n"),
			want: "\n\n--- File: a/b.txt ---\n\nhéllo\n",
		},
		{
			name: "latin-1 fallback",
			data: []byte("caf\xe9"),
			want: "\n\n--- File: a/b.txt (ISO-8859-1 encoding) ---\n\ncafé",
		},
		{
			name: "empty file",
			data: nil,
			want: "\n\n--- File: a/b.txt ---\n\n",
		},
		{
			name:    "read error",
			readErr: errors.New("permission denied"),
			want:    "\n\nError reading a/b.txt: permission denied\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteFileSection(&buf, "a/b.txt", tt.data, tt.readErr))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteFileSectionReturnsWriteErrors(t *testing.T) {
	assert.EqualError(t, WriteFileSection(brokenWriter{}, "x", []byte("x"), nil), "broken pipe")
	assert.EqualError(t, WriteFileSection(brokenWriter{}, "x", nil, errors.New("boom")), "broken pipe")
}
