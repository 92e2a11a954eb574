package extract

import "unicode/utf8"

// Method records which path produced a result.
type Method string

const (
	MethodRuleBased        Method = "rule-based"
	MethodModelAssisted    Method = "model-assisted"
	MethodHybrid           Method = "hybrid"
	MethodPatternMatching  Method = "pattern-matching"
	MethodDirectExtraction Method = "direct-extraction"
)

// rawOutputLimit bounds RawModelOutput, in runes.
const rawOutputLimit = 200

// Result is the outcome of one extraction. Nil pointers encode as JSON null;
// keys are never omitted.
type Result struct {
	TaxID          *string `json:"taxId" example:"123456789012"`
	FullName       *string `json:"fullName" example:"Петров Алексей Сергеевич"`
	Method         Method  `json:"method" example:"rule-based"`
	RawModelOutput *string `json:"rawModelOutput"`
	Error          *string `json:"error"`
}

// Complete reports whether both fields are present.
func (r Result) Complete() bool { return r.TaxID != nil && r.FullName != nil }

// TaxIDValue returns the tax id or "".
func (r Result) TaxIDValue() string { return deref(r.TaxID) }

// FullNameValue returns the full name or "".
func (r Result) FullNameValue() string { return deref(r.FullName) }

// RawModelOutputValue returns the truncated model answer or "".
func (r Result) RawModelOutputValue() string { return deref(r.RawModelOutput) }

// ErrorValue returns the diagnostic or "".
func (r Result) ErrorValue() string { return deref(r.Error) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// optional returns nil for "" so empty strings never reach the encoding.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// truncate keeps the first rawOutputLimit runes and marks the cut.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= rawOutputLimit {
		return s
	}
	n := 0
	for i := range s {
		if n == rawOutputLimit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
