package cord

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// zeroWidth matches invisible/zero-width code points that carry no visible
// meaning but can be used to split keywords apart before pattern matching.
var zeroWidth = regexp.MustCompile(`[\x{200B}-\x{200F}\x{FEFF}\x{00AD}\x{2028}\x{2029}\x{180E}\x{2060}]`)

type htmlEntity struct {
	pattern *regexp.Regexp
	replace string
}

var htmlEntities = []htmlEntity{
	{regexp.MustCompile(`(?i)&lt;`), "<"},
	{regexp.MustCompile(`(?i)&gt;`), ">"},
	{regexp.MustCompile(`(?i)&amp;`), "&"},
	{regexp.MustCompile(`(?i)&quot;`), `"`},
}

var (
	htmlEntityHex = regexp.MustCompile(`&#x([0-9a-fA-F]+);`)
	htmlEntityDec = regexp.MustCompile(`&#(\d+);`)
)

// b64Candidate matches runs of base64-alphabet characters long enough to be
// worth attempting a decode; spec requires >=20 characters, optionally padded.
var b64Candidate = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)

var leetTable = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a',
	'5': 's', '6': 'g', '7': 't', '8': 'b',
	'@': 'a', '$': 's', '!': 'i', '|': 'i',
	'+': 't',
	// '<', '(', '[' intentionally excluded: structural, not substituted.
}

var whitespaceRun = regexp.MustCompile(`[ \t]{2,}`)

// Normalize canonicalizes text so downstream pattern matching cannot be
// evaded by encoding, splitting, or character substitution. If the
// normalized form differs from the input, both forms are returned
// concatenated so patterns can match either. Never panics on malformed
// input; decode failures leave the offending token untouched.
func Normalize(text string) string {
	if text == "" {
		return text
	}

	result := norm.NFKC.String(text)
	result = zeroWidth.ReplaceAllString(result, "")
	result = decodeHTMLEntities(result)
	result = expandBase64(result)
	result = collapseWordSplits(result)
	result = applyLeet(result)
	result = whitespaceRun.ReplaceAllString(result, " ")

	if result != text {
		return text + " " + result
	}
	return result
}

// NormalizeProposalText normalizes both proposal text and raw input,
// returning the canonicalized pair used for the remainder of the pipeline.
func NormalizeProposalText(text, rawInput string) (string, string) {
	normText := Normalize(text)
	normRaw := ""
	if rawInput != "" {
		normRaw = Normalize(rawInput)
	}
	return normText, normRaw
}

func decodeHTMLEntities(s string) string {
	for _, e := range htmlEntities {
		s = e.pattern.ReplaceAllString(s, e.replace)
	}
	s = htmlEntityHex.ReplaceAllStringFunc(s, func(m string) string {
		groups := htmlEntityHex.FindStringSubmatch(m)
		n, err := strconv.ParseInt(groups[1], 16, 32)
		if err != nil || n < 0 || n > utf8.MaxRune {
			return m
		}
		return string(rune(n))
	})
	s = htmlEntityDec.ReplaceAllStringFunc(s, func(m string) string {
		groups := htmlEntityDec.FindStringSubmatch(m)
		n, err := strconv.ParseInt(groups[1], 10, 32)
		if err != nil || n < 0 || n > utf8.MaxRune {
			return m
		}
		return string(rune(n))
	})
	return s
}

// expandBase64 decodes long base64-looking runs and appends the decoded
// text after the original blob (keeping both scannable), but only when the
// decoded bytes are entirely printable and non-trivial in length — this
// avoids turning arbitrary binary noise into false keyword matches.
func expandBase64(s string) string {
	return b64Candidate.ReplaceAllStringFunc(s, func(candidate string) string {
		padded := candidate
		if m := len(padded) % 4; m != 0 {
			padded += strings.Repeat("=", 4-m)
		}
		decoded, err := base64.StdEncoding.DecodeString(padded)
		if err != nil {
			return candidate
		}
		text := string(decoded)
		if len(text) > 4 && isPrintable(text) {
			return candidate + " " + text
		}
		return candidate
	})
}

func isPrintable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r == '\n' || r == '\t' {
			continue
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// collapseWordSplits rejoins runs of single characters separated by
// space/./-/_ back into one word, e.g. "i g n o r e" -> "ignore". A run
// qualifies at three or more split tokens (spec: "at least three single
// alphanumeric characters") and must not be flanked by another word
// character, so it doesn't eat into an ordinary sentence.
func collapseWordSplits(s string) string {
	runes := []rune(s)
	var out strings.Builder
	i := 0
	for i < len(runes) {
		if end, ok := matchSplitRun(runes, i); ok {
			// The longest run can end inside a following word ("i g n o r e
			// p|revious"); drop trailing pairs until it ends on a boundary.
			for end-i > 5 && !isWordBoundarySafe(runes, i, end) {
				end -= 2
			}
			if isWordBoundarySafe(runes, i, end) {
				out.WriteString(stripDelims(string(runes[i:end])))
				i = end
				continue
			}
		}
		out.WriteRune(runes[i])
		i++
	}
	return out.String()
}

// matchSplitRun finds the longest run starting at i of the form
// (alnum delim){2,}alnum, returning its end index (exclusive).
func matchSplitRun(runes []rune, i int) (int, bool) {
	isDelim := func(r rune) bool { return r == ' ' || r == '.' || r == '-' || r == '_' }
	isAlnum := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

	pos := i
	pairs := 0
	for pos+1 < len(runes) && isAlnum(runes[pos]) && isDelim(runes[pos+1]) {
		pairs++
		pos += 2
	}
	if pairs >= 2 && pos < len(runes) && isAlnum(runes[pos]) {
		return pos + 1, true
	}
	return 0, false
}

func isWordBoundarySafe(runes []rune, start, end int) bool {
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }
	if start > 0 && isWord(runes[start-1]) {
		return false
	}
	if end < len(runes) && isWord(runes[end]) {
		return false
	}
	return true
}

func stripDelims(s string) string {
	var out strings.Builder
	for _, r := range s {
		if r == ' ' || r == '.' || r == '-' || r == '_' {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func applyLeet(s string) string {
	var out strings.Builder
	for _, r := range s {
		if sub, ok := leetTable[r]; ok {
			out.WriteRune(sub)
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}
