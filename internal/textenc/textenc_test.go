package textenc_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/batchbook/internal/textenc"
)

func decodeAll(t *testing.T, in []byte) (string, textenc.Charset) {
	t.Helper()

	r, charset, err := textenc.Decode(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDecode(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Descrição;Montante\n"))
	require.NoError(t, err)

	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset textenc.Charset
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Descrição;Montante\nCafé;12,50\n"),
			want:        "Descrição;Montante\nCafé;12,50\n",
			wantCharset: textenc.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"version":2}`)...),
			want:        `{"version":2}`,
			wantCharset: textenc.UTF8,
		},
		{
			name: "Latin1",
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			want: "Descrição;Montante\n",
		},
		{
			name:        "UTF16LE",
			input:       utf16,
			want:        "Descrição;Montante\n",
			wantCharset: textenc.UTF16LE,
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: textenc.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decodeAll(t, tt.input)

			assert.Equal(t, tt.want, got)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}

func TestDecode_LongInputIsNotTruncated(t *testing.T) {
	line := []byte("30-01-2026;PAGAMENTO;-10,00\n")
	input := bytes.Repeat(line, 500)

	got, _ := decodeAll(t, input)
	assert.Len(t, got, len(input))
}
