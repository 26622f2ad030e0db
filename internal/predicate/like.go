package predicate

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form used by every case-insensitive operator.
func fold(s string) string {
	return cases.Fold().String(s)
}

var (
	likeMu    sync.Mutex
	likeCache = map[string]*regexp.Regexp{}
)

// likePattern compiles a LIKE pattern into an anchored regular expression.
//
//	%       any run of characters
//	_       exactly one character
//	[abc]   one character from the set ([^abc] negates, [a-c] ranges)
//
// Case is ignored by the (?i) flag rather than by folding, since a full
// fold can change length ("ß" becomes "ss") and '_' must still match
// exactly one character of the subject.
func likePattern(pattern string) (*regexp.Regexp, error) {
	likeMu.Lock()
	defer likeMu.Unlock()
	if re, ok := likeCache[pattern]; ok {
		return re, nil
	}

	var b strings.Builder
	b.WriteString(`(?is)^`)
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		case '[':
			end := closingBracket(runes, i)
			if end < 0 {
				b.WriteString(regexp.QuoteMeta("["))
				continue
			}
			b.WriteString(charClass(runes[i+1 : end]))
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	likeCache[pattern] = re
	return re, nil
}

// closingBracket finds the ']' closing the class opened at open, or -1.
// A ']' directly after '[' or '[^' is a literal member.
func closingBracket(runes []rune, open int) int {
	i := open + 1
	if i < len(runes) && runes[i] == '^' {
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		i++
	}
	for ; i < len(runes); i++ {
		if runes[i] == ']' {
			return i
		}
	}
	return -1
}

// charClass renders the inside of a LIKE bracket expression as a regexp class.
func charClass(body []rune) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, r := range body {
		switch {
		case i == 0 && r == '^':
			b.WriteByte('^')
		case r == '-' && i > 0 && i < len(body)-1:
			b.WriteByte('-')
		case r == '\\' || r == ']' || r == '[' || r == '^' || r == '-':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(']')
	return b.String()
}

// matchLike reports whether subject matches the LIKE pattern, ignoring case.
func matchLike(subject, pattern string) (bool, error) {
	re, err := likePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(subject), nil
}
