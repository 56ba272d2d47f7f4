package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// Legacy claim-section line markers.
var (
	// claimNumRe matches a claim-number line: the NUM token followed by the
	// claim's ordinal.  Lines with no digits after the token are treated as
	// ordinary text, never as errors.
	claimNumRe = regexp.MustCompile(`^NUM\s+(\d+)`)

	// claimStepRe matches structural markers (claim statements and centered
	// section headings) that introduce the claims without contributing claim
	// text; such lines are skipped entirely.
	claimStepRe = regexp.MustCompile(`^(?:STM|PAC)(?:\s|$)`)
)

// claimParaPrefixes are the recognized paragraph tokens stripped from
// continuation lines before the remainder is accumulated as claim text.
var claimParaPrefixes = []string{
	"PAR", "PAL", "PAG", "PA0", "PA1", "PA2", "PA3", "PA4", "PA5", "TBL",
}

// assembleClaims reconstructs the ordered claims from the tail of a legacy
// record's claim section.  It is an explicit fold over lines: the only state
// is the current accumulator and the last-seen claim ordinal, which is
// tracked for ordering but not retained in the output.
//
// Rules, in order per line:
//   - claim-number marker: flush the accumulator (if non-empty) as a
//     completed claim, note the new ordinal, continue;
//   - structural step marker: skip;
//   - anything else: strip a recognized paragraph prefix, trim, and append
//     to the accumulator with a separating space.
//
// End of input flushes the remaining text.  A section of exactly one line is
// flushed as a single claim even when no marker was ever seen.
func assembleClaims(section string) []string {
	lines := splitSectionLines(section)
	if len(lines) == 0 {
		return nil
	}
	if len(lines) == 1 {
		if text := strings.TrimSpace(lines[0]); text != "" {
			return []string{text}
		}
		return nil
	}

	var (
		claims []string
		acc    strings.Builder
	)
	// lastNum tracks the most recent claim ordinal.  Numbering is not part
	// of the output schema; only encounter order is preserved.
	lastNum := 0

	flush := func() {
		if acc.Len() > 0 {
			claims = append(claims, acc.String())
			acc.Reset()
		}
	}

	for _, line := range lines {
		if m := claimNumRe.FindStringSubmatch(line); m != nil {
			flush()
			if n, err := strconv.Atoi(m[1]); err == nil {
				lastNum = n
			}
			continue
		}
		if claimStepRe.MatchString(line) {
			continue
		}
		text := stripParaPrefix(line)
		if text == "" {
			continue
		}
		if acc.Len() > 0 {
			acc.WriteByte(' ')
		}
		acc.WriteString(text)
	}
	flush()

	_ = lastNum
	return claims
}

// stripParaPrefix removes one recognized paragraph token from the head of a
// line and trims the remainder.
func stripParaPrefix(line string) string {
	for _, p := range claimParaPrefixes {
		if strings.HasPrefix(line, p+" ") || line == p {
			return strings.TrimSpace(line[len(p):])
		}
	}
	return strings.TrimSpace(line)
}

// splitSectionLines splits on line terminators, tolerating CRLF, and drops
// trailing empty lines so that a terminating newline does not turn a
// single-line section into two lines.
func splitSectionLines(section string) []string {
	raw := strings.Split(section, "\n")
	for i := range raw {
		raw[i] = strings.TrimSuffix(raw[i], "\r")
	}
	end := len(raw)
	for end > 0 && strings.TrimSpace(raw[end-1]) == "" {
		end--
	}
	return raw[:end]
}
