package extraction

import (
	"strings"

	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// APS field line tokens.  Each bibliographic value sits on its own line
// introduced by a fixed short token padded with spaces; the first matching
// line wins and the token is stripped from the value.
const (
	apsTokenAppNumber   = "PNO"
	apsTokenAppDate     = "APD"
	apsTokenIssueDate   = "ISD"
	apsTokenTitle       = "TTL"
	apsTokenWorkNumber  = "WKU"
	apsClaimsMarker     = "CLMS"
	apsDesignClaimToken = "DCLM"
)

// extractAPS maps one legacy fixed-field text record to the normalized
// schema.  There is no structural tree: each field is obtained by scanning
// the record's lines for its token.  Language, country, and DTD version do
// not exist in this dialect and are always absent; the file name always
// comes from the caller.
func extractAPS(section, fileName string) patent.NormalizedRecord {
	var rec patent.NormalizedRecord
	lines := splitSectionLines(section)
	if len(lines) == 0 {
		return rec
	}

	rec.FileName = patent.String(fileName)
	rec.ApplicationNumber = scanToken(lines, apsTokenAppNumber)
	rec.DateProduced = scanToken(lines, apsTokenAppDate)
	rec.DatePublished = scanToken(lines, apsTokenIssueDate)
	rec.InventionTitle = scanToken(lines, apsTokenTitle)
	rec.InventionID = scanToken(lines, apsTokenWorkNumber)

	// Design grants carry a design-claim section; everything else in this
	// dialect is a utility grant.
	if hasTokenLine(lines, apsDesignClaimToken) {
		rec.RecordType = patent.String(patent.TypeDesign)
	} else {
		rec.RecordType = patent.String(patent.TypeUtility)
	}

	if tail, ok := claimsSection(lines); ok {
		rec.Claims = assembleClaims(tail)
	}
	return rec
}

// scanToken returns the value of the first line bearing the token, with the
// token stripped and the remainder trimmed, or absent when no line matches.
func scanToken(lines []string, token string) *string {
	for _, line := range lines {
		if strings.HasPrefix(line, token+" ") {
			return opt(strings.TrimSpace(line[len(token):]), true)
		}
	}
	return nil
}

// hasTokenLine reports whether any line starts the named section.
func hasTokenLine(lines []string, token string) bool {
	for _, line := range lines {
		if line == token || strings.HasPrefix(line, token+" ") {
			return true
		}
	}
	return false
}

// claimsSection returns the joined tail of the record following the CLMS
// section marker line.
func claimsSection(lines []string) (string, bool) {
	for i, line := range lines {
		if strings.TrimSpace(line) == apsClaimsMarker {
			return strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", false
}
