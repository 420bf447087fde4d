package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected Encoding
	}{
		{
			name:     "UTF-8 BOM",
			content:  []byte{0xEF, 0xBB, 0xBF, 'H', 'e', 'l', 'l', 'o'},
			expected: EncodingUTF8,
		},
		{
			name:     "plain ASCII",
			content:  []byte("Hello, World!"),
			expected: EncodingUTF8,
		},
		{
			name:     "UTF-8 with diacritics",
			content:  []byte("Škare, čekić"),
			expected: EncodingUTF8,
		},
		{
			name:     "Windows-1250 bytes",
			content:  []byte{'a', 0x8A, 0x9A, 0xD0, 0xF0},
			expected: EncodingWindows1250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.content))
		})
	}
}

func TestDecodeToUTF8Windows1250(t *testing.T) {
	// "Škare" in Windows-1250
	decoded, err := DecodeToUTF8([]byte{0x8A, 'k', 'a', 'r', 'e'}, EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Škare", decoded)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected rune
	}{
		{
			name:     "comma",
			content:  "name,price,quantity\nApple,100,5",
			expected: ',',
		},
		{
			name:     "semicolon",
			content:  "name;price;quantity\nApple;100;5",
			expected: ';',
		},
		{
			name:     "tab",
			content:  "name\tprice\tquantity\nApple\t100\t5",
			expected: '\t',
		},
		{
			name:     "semicolon with commas in values",
			content:  "name;price\nApple, red;1,50\nPear, green;2,00",
			expected: ';',
		},
		{
			name:     "empty defaults to comma",
			content:  "",
			expected: ',',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.content))
		})
	}
}

func TestReadCSV(t *testing.T) {
	content := []byte("Artikl;Cijena;EAN\nHammer;12,50;3850123456789\nSaw;8,00;3850987654321\n")

	rows, err := ReadCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Hammer", rows[0]["Artikl"])
	assert.Equal(t, "12,50", rows[0]["Cijena"])
	assert.Equal(t, "3850987654321", rows[1]["EAN"])
}

func TestReadCSVSkipsEmptyRows(t *testing.T) {
	content := []byte("name,price\nHammer,10\n,\nSaw,20\n")

	rows, err := ReadCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Saw", rows[1]["name"])
}

func TestReadCSVQuotedFields(t *testing.T) {
	content := []byte("name,price\n\"Hammer, large\",10\n")

	rows, err := ReadCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hammer, large", rows[0]["name"])
}

func TestReadCSVEmptyFile(t *testing.T) {
	rows, err := ReadCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVUnevenRows(t *testing.T) {
	// Rows shorter or longer than the header must not panic
	content := []byte("a,b,c\n1,2\n1,2,3,4\n")

	rows, err := ReadCSV(content)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0]["b"])
	assert.NotContains(t, rows[0], "c")
}
