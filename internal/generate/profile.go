package generate

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Built-in profile names.
const (
	ProfileDefault = "default"
	ProfileJSON    = "json"
	ProfileGemma   = "gemma"
)

// Profile bundles everything that used to differ between per-model extractor
// variants: model id, decoding options, prompt template and response marker.
type Profile struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Model is passed to the runtime; empty means the runtime default.
	Model   string  `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Options Options `json:"options" yaml:"options" toml:"options"`
	// PromptTemplate is a text/template rendered with PromptData.
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template" toml:"prompt_template"`
	// ResponseMarker, when present in the output, marks where the model answer
	// starts; everything up to its last occurrence is dropped.
	ResponseMarker string `json:"response_marker,omitempty" yaml:"response_marker,omitempty" toml:"response_marker,omitempty"`
}

// PromptData is the template input. Empty fields were not found by the
// rule-based pass.
type PromptData struct {
	Text     string
	TaxID    string
	FullName string
}

// Validate checks decoding options and that the template parses.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.PromptTemplate) == "" {
		return fmt.Errorf("profile %q: empty prompt template", p.Name)
	}
	if _, err := template.New(p.Name).Parse(p.PromptTemplate); err != nil {
		return fmt.Errorf("profile %q: parse template: %w", p.Name, err)
	}
	if err := p.Options.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// Render builds the prompt for one request.
func (p Profile) Render(d PromptData) (string, error) {
	t, err := template.New(p.Name).Option("missingkey=error").Parse(p.PromptTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var b strings.Builder
	if err := t.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return b.String(), nil
}

// StripEcho removes an echoed prompt prefix and anything up to the last
// response marker. Runtimes are not assumed to strip the prompt themselves.
func (p Profile) StripEcho(prompt, output string) string {
	out := output
	if prompt != "" && strings.HasPrefix(out, prompt) {
		out = out[len(prompt):]
	} else if tp := strings.TrimSpace(prompt); tp != "" {
		if to := strings.TrimLeft(out, " \t\r\n"); strings.HasPrefix(to, tp) {
			out = to[len(tp):]
		}
	}
	if p.ResponseMarker != "" {
		if i := strings.LastIndex(out, p.ResponseMarker); i >= 0 {
			out = out[i+len(p.ResponseMarker):]
		}
	}
	return strings.TrimSpace(out)
}

var builtinProfiles = map[string]Profile{
	ProfileDefault: {
		Name:           ProfileDefault,
		Options:        Options{MaxNewTokens: 100, Temperature: 0.1, Deterministic: true},
		PromptTemplate: promptLines,
	},
	ProfileJSON: {
		Name:           ProfileJSON,
		Options:        Options{MaxNewTokens: 100, Temperature: 0.1, Deterministic: true},
		PromptTemplate: promptJSON,
	},
	ProfileGemma: {
		Name:           ProfileGemma,
		Options:        Options{MaxNewTokens: 100, Temperature: 0.1, Deterministic: true},
		PromptTemplate: promptGemma,
		ResponseMarker: "<start_of_turn>model",
	},
}

// LookupProfile returns a copy of a built-in profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := builtinProfiles[name]
	return p, ok
}

// ProfileNames returns a sorted list of built-in profile names.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const promptLines = `ТЕКСТ: "{{.Text}}"

Уже найдено:
- ИНН: {{if .TaxID}}{{.TaxID}}{{else}}не найден{{end}}
- ФИО: {{if .FullName}}{{.FullName}}{{else}}не найдено{{end}}

Помоги найти недостающие данные. Ответь ТОЛЬКО в формате:
ИНН: <найденный_инн_или_пусто>
ФИО: <найденное_фио_или_пусто>
`

const promptJSON = `### SYSTEM:
Ты - API. Ты принимаешь текст и возвращаешь JSON.
Ты НЕ добавляешь никаких других слов кроме JSON.

### INPUT:
{{.Text}}

### ALREADY FOUND:
ИНН: {{if .TaxID}}{{.TaxID}}{{else}}null{{end}}
ФИО: {{if .FullName}}{{.FullName}}{{else}}null{{end}}

### RULES:
1. ИНН - только цифры (10 или 12 символов)
2. ФИО - фамилия, имя, отчество (русские буквы)
3. Если данных нет - верни null

### OUTPUT FORMAT:
{"ИНН": "найденный инн или null", "ФИО": "найденное фио или null"}

### RESPONSE (ONLY JSON):
`

const promptGemma = `<start_of_turn>user
Извлеки ИНН и ФИО из текста и верни ТОЛЬКО JSON. Не добавляй никакого текста.

Текст: "{{.Text}}"
{{if .TaxID}}ИНН уже найден: {{.TaxID}}
{{end}}{{if .FullName}}ФИО уже найдено: {{.FullName}}
{{end}}
Формат ответа:
{"ИНН": "найденный инн или null", "ФИО": "найденное фио или null"}<end_of_turn>
<start_of_turn>model
`
