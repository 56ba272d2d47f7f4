package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRecords_ICE(t *testing.T) {
	blob := `<?xml version="1.0"?>
<us-patent-grant lang="EN" country="US">
<abstract>first</abstract>
</us-patent-grant>
<?xml version="1.0"?>
<US-PATENT-GRANT lang="EN">
<abstract>second</abstract>
</US-PATENT-GRANT>`

	sections := splitRecords(DialectICE, blob)

	assert.Len(t, sections, 2)
	assert.Contains(t, sections[0], "first")
	assert.Contains(t, sections[1], "second")
}

func TestSplitRecords_ICE_NoMatchIsEmpty(t *testing.T) {
	assert.Empty(t, splitRecords(DialectICE, "no records here"))
	assert.Empty(t, splitRecords(DialectICE, ""))
}

func TestSplitRecords_ICE_TruncatedTrailingRecordDropped(t *testing.T) {
	blob := `<us-patent-grant a="1">complete</us-patent-grant>
<us-patent-grant a="2">truncated, no closing tag`

	sections := splitRecords(DialectICE, blob)

	assert.Len(t, sections, 1)
	assert.Contains(t, sections[0], "complete")
}

func TestSplitRecords_PG25(t *testing.T) {
	blob := `<PATDOC DTD="2.5">
<SDOBI>one</SDOBI>
</PATDOC>
<PATDOC DTD="2.5">
<SDOBI>two</SDOBI>
</PATDOC>`

	sections := splitRecords(DialectPG25, blob)

	assert.Len(t, sections, 2)
}

func TestSplitRecords_APS(t *testing.T) {
	blob := "HHHHHT file header junk\r\n" +
		"PATN\r\n" +
		"PNO  11111\r\n" +
		"PATN\r\n" +
		"PNO  22222\r\n"

	sections := splitRecords(DialectAPS, blob)

	assert.Len(t, sections, 2)
	// The marker is consumed; the header before the first marker is gone.
	assert.Equal(t, "PNO  11111\r\n", sections[0])
	assert.Equal(t, "PNO  22222\r\n", sections[1])
}

func TestSplitRecords_APS_NoMarker(t *testing.T) {
	assert.Nil(t, splitRecords(DialectAPS, "header only, no records"))
	assert.Nil(t, splitRecords(DialectAPS, ""))
}

func TestDialectForFileName(t *testing.T) {
	cases := []struct {
		name    string
		want    Dialect
		wantErr bool
	}{
		{"ipg170103.xml", DialectICE, false},
		{"IPG170103.XML", DialectICE, false},
		{"pg030520.xml", DialectPG25, false},
		{"pftaps19900101_wk01.txt", DialectAPS, false},
		{"data/2017/ipg170103.xml", DialectICE, false},
		{"unknown.txt", 0, true},
	}
	for _, tc := range cases {
		got, err := DialectForFileName(tc.name)
		if tc.wantErr {
			assert.Error(t, err, tc.name)
			continue
		}
		assert.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}
