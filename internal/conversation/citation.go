package conversation

import "regexp"

// citationPattern matches provider citation markers such as 【3:1†doc.txt】.
var citationPattern = regexp.MustCompile(`【\d+:\d+†[^】]+】`)

// StripCitations removes every citation marker from s. Removal repeats until
// nothing matches, since deleting one marker can join the halves of another.
func StripCitations(s string) string {
	for {
		out := citationPattern.ReplaceAllLiteralString(s, "")
		if out == s {
			return out
		}
		s = out
	}
}
