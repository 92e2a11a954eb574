package extract

import (
	"regexp"
	"sort"
	"strings"
)

// fieldFinder looks for one field in a model answer or, for the last
// strategy, in the original text.
type fieldFinder func(output, original string) (string, bool)

type strategy struct {
	method   Method
	taxID    fieldFinder
	fullName fieldFinder
}

// Structured keys after normKey.
var (
	taxIDKeys    = []string{"инн", "inn", "taxid"}
	fullNameKeys = []string{"фио", "fio", "fullname", "name"}
)

// Label separators, then the value. A tax id value is one digit run; a name
// value ends at the first punctuation mark, except a hyphen inside a word.
const (
	labelSep      = `(?:\s*[:=\-–—]\s*|\s+)["'«„“]?`
	taxIDValue    = `([0-9]+)(?:$|[^0-9])`
	fullNameValue = `((?:[^\n\r\p{P}]|[^\s\p{P}]-[^\s\p{P}])+)`
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	flatBlock   = regexp.MustCompile(`\{[^{}]*\}`)

	taxIDLabels = []*regexp.Regexp{
		label(`ИНН`, taxIDValue),
		label(`INN`, taxIDValue),
		label(`tax[ _-]?id`, taxIDValue),
	}
	fullNameLabels = []*regexp.Regexp{
		label(`Ф\.?\s*И\.?\s*О\.?`, fullNameValue),
		label(`Фамилия`, fullNameValue),
		label(`full[ _-]?name`, fullNameValue),
		label(`name`, fullNameValue),
	}
	// A name captured after its label may run into a following tax id label;
	// it is cut off here.
	nameStop = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:инн|inn|tax[ _-]?id)(?:$|[^\p{L}])`)
)

func label(expr, value string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + leftEdge + `"?(?:` + expr + `)"?` + labelSep + value)
}

// strategies run in priority order; each field takes the first hit.
var strategies = []strategy{
	{MethodModelAssisted, structuredField(taxIDKeys, ValidateTaxID), structuredField(fullNameKeys, validateAnswerName)},
	{MethodPatternMatching, labelledField(taxIDLabels, nil, ValidateTaxID), labelledField(fullNameLabels, cutAtTaxLabel, validateAnswerName)},
	{MethodDirectExtraction, directTaxID, directFullName},
}

// ParseResponse recovers fields from a model answer. Method names the
// earliest strategy that contributed a field, or direct-extraction when
// nothing was found.
func ParseResponse(output, original string) Result {
	p := parse(output, original)
	res := Result{
		TaxID:    optional(p.taxID),
		FullName: optional(p.fullName),
		Method:   MethodDirectExtraction,
	}
	if i := p.earliest(); i >= 0 {
		res.Method = strategies[i].method
	}
	return res
}

// parsed keeps per-field provenance as strategy indexes (-1 when missing).
type parsed struct {
	taxID, fullName     string
	taxFrom, fullNameAt int
}

func (p parsed) earliest() int {
	switch {
	case p.taxFrom < 0:
		return p.fullNameAt
	case p.fullNameAt < 0:
		return p.taxFrom
	default:
		return min(p.taxFrom, p.fullNameAt)
	}
}

// fromModel reports whether strategy i reads the model answer rather than the
// original text.
func fromModel(i int) bool {
	return i >= 0 && strategies[i].method != MethodDirectExtraction
}

func parse(output, original string) parsed {
	output = normalize(output)
	p := parsed{taxFrom: -1, fullNameAt: -1}
	for i, s := range strategies {
		if p.taxFrom < 0 {
			if v, ok := s.taxID(output, original); ok {
				p.taxID, p.taxFrom = v, i
			}
		}
		if p.fullNameAt < 0 {
			if v, ok := s.fullName(output, original); ok {
				p.fullName, p.fullNameAt = v, i
			}
		}
		if p.taxFrom >= 0 && p.fullNameAt >= 0 {
			break
		}
	}
	return p
}

func structuredField(keys []string, validate func(string) (string, bool)) fieldFinder {
	return func(output, _ string) (string, bool) {
		for _, block := range structuredBlocks(output) {
			for _, k := range keys {
				raw, ok := block[k]
				if !ok {
					continue
				}
				if v, ok := accept(raw, validate); ok {
					return v, true
				}
			}
		}
		return "", false
	}
}

// structuredBlocks returns every schema-valid block, fenced ones first, with
// keys normalized and values rendered as strings. Null values are dropped.
func structuredBlocks(output string) []map[string]string {
	var raws []string
	for _, m := range fencedBlock.FindAllStringSubmatch(output, -1) {
		raws = append(raws, m[1])
	}
	raws = append(raws, flatBlock.FindAllString(output, -1)...)

	var blocks []map[string]string
	for _, raw := range raws {
		obj, err := decodeBlock(raw)
		if err != nil || obj == nil {
			continue
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		block := make(map[string]string, len(obj))
		for _, k := range keys {
			v, ok := scalarString(obj[k])
			if !ok {
				continue
			}
			nk := normKey(k)
			if _, dup := block[nk]; !dup {
				block[nk] = v
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case interface{ String() string }: // json.Number
		return t.String(), true
	default:
		return "", false
	}
}

// normKey lowercases and drops spaces, dots, dashes and underscores so that
// "Ф.И.О.", "full_name" and "taxId" meet their canonical spelling.
func normKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(k)))
}

func labelledField(labels []*regexp.Regexp, clean func(string) string, validate func(string) (string, bool)) fieldFinder {
	return func(output, _ string) (string, bool) {
		for _, re := range labels {
			for _, m := range re.FindAllStringSubmatch(output, -1) {
				raw := m[1]
				if clean != nil {
					raw = clean(raw)
				}
				if v, ok := accept(raw, validate); ok {
					return v, true
				}
			}
		}
		return "", false
	}
}

func cutAtTaxLabel(v string) string {
	if loc := nameStop.FindStringIndex(v); loc != nil {
		return v[:loc[0]]
	}
	return v
}

// answerName matches the shape of a full name: two or three capitalized
// Russian words.
var answerName = regexp.MustCompile(`^` + nameWord + `(?: ` + nameWord + `){1,2}$`)

// validateAnswerName validates a name read from a model answer. Models often
// answer in prose ("не указано в тексте"), so the value must also look like
// a name.
func validateAnswerName(candidate string) (string, bool) {
	v, ok := ValidateFullName(candidate)
	if !ok || !answerName.MatchString(v) {
		return "", false
	}
	return v, true
}

func directTaxID(_, original string) (string, bool) {
	return findTaxID(normalize(original))
}

func directFullName(_, original string) (string, bool) {
	return findFullName(normalize(original))
}

// accept filters placeholders before validation.
func accept(raw string, validate func(string) (string, bool)) (string, bool) {
	if isPlaceholder(raw) {
		return "", false
	}
	return validate(raw)
}

var placeholders = map[string]bool{
	"":            true,
	"-":           true,
	"n/a":         true,
	"nil":         true,
	"null":        true,
	"none":        true,
	"нет":         true,
	"пусто":       true,
	"отсутствует": true,
	"не указан":   true,
	"не указано":  true,
	"не найден":   true,
	"не найдено":  true,
}

// isPlaceholder recognizes prompt echoes and "not found" answers such as
// "<ФИО>", "найденное ФИО или null" or "не найдено".
func isPlaceholder(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	if placeholders[strings.Trim(s, `"'[]().`)] {
		return true
	}
	if strings.ContainsAny(s, "<>_") {
		return true
	}
	for _, sub := range refusals {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// refusals are fragments of "not found" answers and template echoes.
var refusals = []string{
	"найденн", "не найден", "не указ", "не извест", "неизвест",
	"нет данн", "отсутств", "не удалось", " или ", "null", "unknown",
}
