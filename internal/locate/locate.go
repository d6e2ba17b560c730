// Package locate finds the end of a Verilog case block by keyword balancing.
package locate

import "regexp"

// CloseToken is the keyword that closes every dispatch-block flavor.
const CloseToken = "endcase"

// Dispatch-open and dispatch-close keywords. casez/casex are counted as
// opens because they close with the same endcase keyword; a single
// first-match search would pair the outer case with an inner block's
// endcase whenever dispatch blocks nest.
var tokenRe = regexp.MustCompile(`\b(?:endcase|casez|casex|case)\b`)

// BlockEnd scans forward from start, the offset immediately after a
// recognized dispatch-open token, and returns the offset immediately after
// the endcase that closes it. Returns false when the input is exhausted
// before the block closes; the caller must treat that file as unpatchable,
// never as a partial match.
func BlockEnd(text []byte, start int) (int, bool) {
	if start < 0 || start > len(text) {
		return 0, false
	}
	depth := 1
	for _, m := range tokenRe.FindAllIndex(text[start:], -1) {
		if string(text[start+m[0]:start+m[1]]) == CloseToken {
			depth--
			if depth == 0 {
				return start + m[1], true
			}
		} else {
			depth++
		}
	}
	return 0, false
}
