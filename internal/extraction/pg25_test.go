package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pg25Sample = `<PATDOC DTD="2.5" DATE="20030520" FILE="US06560000-20030520.XML" STATUS="GRANT">
<SDOBI>
<B200>
<B210><DNUM><PDAT>09876543</PDAT></DNUM></B210>
<B220><DATE><PDAT>20010312</PDAT></DATE></B220>
</B200>
<B500>
<B540><STEXT><PDAT>Adjustable widget mount</PDAT></STEXT></B540>
</B500>
</SDOBI>
<SDOCL>
<CL>
<CLM ID="CLM-1"><PTEXT><PDAT>1. A mount comprising a bracket.</PDAT></PTEXT></CLM>
<CLM ID="CLM-2"><PTEXT><PDAT>2. The mount of claim 1, further comprising a bolt.</PDAT></PTEXT></CLM>
</CL>
</SDOCL>
</PATDOC>`

func TestExtractPG25_AllFields(t *testing.T) {
	rec := extractPG25(pg25Sample, "pg030520.xml")

	require.NotNil(t, rec.DTDVersion)
	assert.Equal(t, "2.5", *rec.DTDVersion)
	require.NotNil(t, rec.DatePublished)
	assert.Equal(t, "20030520", *rec.DatePublished)
	require.NotNil(t, rec.PatentStatus)
	assert.Equal(t, "GRANT", *rec.PatentStatus)
	require.NotNil(t, rec.FileName)
	assert.Equal(t, "US06560000-20030520.XML", *rec.FileName)

	require.NotNil(t, rec.ApplicationNumber)
	assert.Equal(t, "09876543", *rec.ApplicationNumber)
	require.NotNil(t, rec.DateProduced)
	assert.Equal(t, "20010312", *rec.DateProduced)
	require.NotNil(t, rec.InventionTitle)
	assert.Equal(t, "Adjustable widget mount", *rec.InventionTitle)

	// The dialect has no language or record-type fields.
	assert.Nil(t, rec.Language)
	assert.Nil(t, rec.Country)
	assert.Nil(t, rec.RecordType)

	require.Len(t, rec.Claims, 2)
	assert.Equal(t, "1. A mount comprising a bracket.", rec.Claims[0])
	assert.Equal(t, "2. The mount of claim 1, further comprising a bolt.", rec.Claims[1])
}

func TestExtractPG25_InventionIDMirrorsTitle(t *testing.T) {
	// The source system read both fields from the title element; the
	// behaviour is preserved for re-processed archives.
	rec := extractPG25(pg25Sample, "")

	require.NotNil(t, rec.InventionID)
	assert.Equal(t, *rec.InventionTitle, *rec.InventionID)
}

func TestExtractPG25_NoClaimsYieldsAbsent(t *testing.T) {
	section := `<PATDOC DTD="2.5"><SDOBI></SDOBI></PATDOC>`

	rec := extractPG25(section, "f")

	assert.Nil(t, rec.Claims)
	require.NotNil(t, rec.DTDVersion)
}

func TestExtractPG25_MalformedMarkupYieldsAllAbsent(t *testing.T) {
	rec := extractPG25(`<PATDOC DTD="2.5"><<<broken`, "")

	assert.True(t, rec.IsEmpty())
}

func TestExtractPG25_FileNameHintFallback(t *testing.T) {
	section := `<PATDOC DTD="2.5"><SDOBI></SDOBI></PATDOC>`

	rec := extractPG25(section, "pg030520.xml")

	require.NotNil(t, rec.FileName)
	assert.Equal(t, "pg030520.xml", *rec.FileName)
}
