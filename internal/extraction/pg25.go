package extraction

import (
	"github.com/openipdata/grantfeed/pkg/types/patent"
)

// extractPG25 maps one older-format grant record (PATDOC root, version 2.5
// DTDs, 2002–2004) to the normalized schema.  Bibliographic paths are
// shallower than the current format's and the dialect has no language or
// record-type fields, so those are always absent.
//
// InventionID deliberately reads the same path as InventionTitle: the source
// system extracted both fields from the title element, and the behaviour is
// reproduced as-is so downstream consumers see identical data for archives
// re-processed here.
func extractPG25(section, fileName string) patent.NormalizedRecord {
	var rec patent.NormalizedRecord

	root, err := parseTree(section)
	if err != nil {
		return rec
	}

	rec.DTDVersion = opt(root.Attr("DTD"))
	rec.DatePublished = opt(root.Attr("DATE"))
	rec.PatentStatus = opt(root.Attr("STATUS"))

	if rec.FileName = opt(root.Attr("FILE")); rec.FileName == nil {
		rec.FileName = patent.String(fileName)
	}

	bib, _ := root.First("SDOBI")
	rec.ApplicationNumber = opt(bib.TextAt("B200", "B210", "DNUM", "PDAT"))
	rec.DateProduced = opt(bib.TextAt("B200", "B220", "DATE", "PDAT"))
	rec.InventionTitle = opt(bib.DeepTextAt("B500", "B540", "STEXT", "PDAT"))
	rec.InventionID = opt(bib.DeepTextAt("B500", "B540", "STEXT", "PDAT"))

	rec.Claims = collectPG25Claims(root)
	return rec
}

// collectPG25Claims assembles the ordered claim texts from the nested
// SDOCL → CL → CLM structure.  A record without CLM elements yields nil; a
// vacuous claims list never reaches the output because the normalizer culls
// all-absent records.
func collectPG25Claims(root *Node) []string {
	cl, ok := root.First("SDOCL", "CL")
	if !ok {
		return nil
	}
	var out []string
	for _, clm := range cl.ChildrenNamed("CLM") {
		if text, ok := clm.DeepText(); ok {
			out = append(out, text)
		}
	}
	return out
}
