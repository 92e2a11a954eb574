package extract

import "regexp"

const (
	nameWord = `[А-ЯЁ][а-яё]+`
	nameSep  = `[\s\p{Zs}]+`
	// Go's \b is ASCII-only, so word boundaries around Cyrillic words are
	// spelled out: start/end of text or a rune that is not a letter, digit or _.
	leftEdge  = `(?:^|[^\p{L}\p{N}_])`
	rightEdge = `(?:$|[^\p{L}\p{N}_])`
)

var (
	digitRun = regexp.MustCompile(`[0-9]+`)

	// Priority order: surname + given name + patronymic, then two words.
	fullNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(leftEdge + `(` + nameWord + nameSep + nameWord + nameSep + nameWord + `)` + rightEdge),
		regexp.MustCompile(leftEdge + `(` + nameWord + nameSep + nameWord + `)` + rightEdge),
	}
)

// RuleBased runs the deterministic first pass. Missing fields stay nil; the
// result is always tagged rule-based.
func RuleBased(text string) Result {
	text = normalize(text)
	res := Result{Method: MethodRuleBased}
	if v, ok := findTaxID(text); ok {
		res.TaxID = &v
	}
	if v, ok := findFullName(text); ok {
		res.FullName = &v
	}
	return res
}

// findTaxID scans maximal digit runs left to right and accepts the first one
// that is exactly 10 or 12 digits long.
func findTaxID(text string) (string, bool) {
	for _, run := range digitRun.FindAllString(text, -1) {
		if len(run) != 10 && len(run) != 12 {
			continue
		}
		if v, ok := ValidateTaxID(run); ok {
			return v, true
		}
	}
	return "", false
}

// findFullName tries each pattern in priority order; the first pattern that
// matches anywhere wins with its leftmost match.
func findFullName(text string) (string, bool) {
	for _, re := range fullNamePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return ValidateFullName(m[1])
	}
	return "", false
}
