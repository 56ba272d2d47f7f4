package extraction

import (
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// extractICE maps one current-format grant record (us-patent-grant root,
// ICE DTDs) to the normalized schema.  The root element carries the locale,
// date, version, status, and file attributes; bibliographic fields descend
// through us-bibliographic-data-grant.  Every lookup path is independent: a
// missing element or attribute leaves only its own field absent.
func extractICE(section, fileName string) patent.NormalizedRecord {
	var rec patent.NormalizedRecord

	root, err := parseTree(section)
	if err != nil {
		// Malformed markup fails the whole record, not the pass.  An
		// all-absent record is culled by the normalizer downstream.
		return rec
	}

	rec.Language = opt(root.Attr("lang"))
	rec.Country = opt(root.Attr("country"))
	rec.DateProduced = opt(root.Attr("date-produced"))
	rec.DatePublished = opt(root.Attr("date-publ"))
	rec.DTDVersion = opt(root.Attr("dtd-version"))
	rec.PatentStatus = opt(root.Attr("status"))

	// The dialect embeds the originating file name on the root element; the
	// caller-supplied hint is the fallback.
	if rec.FileName = opt(root.Attr("file")); rec.FileName == nil {
		rec.FileName = patent.String(fileName)
	}

	bib, _ := root.First("us-bibliographic-data-grant")
	rec.ApplicationNumber = opt(bib.TextAt("application-reference", "document-id", "doc-number"))
	if appRef, ok := bib.First("application-reference"); ok {
		rec.RecordType = opt(appRef.Attr("appl-type"))
	}
	rec.InventionTitle = opt(bib.DeepTextAt("invention-title"))
	if title, ok := bib.First("invention-title"); ok {
		rec.InventionID = opt(title.Attr("id"))
	}

	rec.Claims = collectClaimTexts(root)
	return rec
}

// collectClaimTexts gathers the ordered claim-text values under the claims
// element.  The result is nil, not empty, when the record has no claims so
// that the schema's present/absent distinction is preserved.
func collectClaimTexts(root *Node) []string {
	claimsEl, ok := root.First("claims")
	if !ok {
		return nil
	}
	var out []string
	for _, claim := range claimsEl.ChildrenNamed("claim") {
		for _, ct := range claim.ChildrenNamed("claim-text") {
			if text, ok := ct.DeepText(); ok {
				out = append(out, text)
			}
		}
	}
	return out
}
