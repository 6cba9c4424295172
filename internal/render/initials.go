package render

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// A word token is a letter followed by at least one more letter.
var wordToken = regexp.MustCompile(`(\p{L})\p{L}+`)

// Initials takes the first letter of the first and of the last word token
// of a display name, uppercased. A name with a single token yields one
// letter; a name without tokens yields "".
func Initials(name string) string {
	matches := wordToken.FindAllStringSubmatch(norm.NFC.String(name), -1)
	if len(matches) == 0 {
		return ""
	}

	initials := matches[0][1]
	if len(matches) > 1 {
		initials += matches[len(matches)-1][1]
	}
	return strings.ToUpper(initials)
}
