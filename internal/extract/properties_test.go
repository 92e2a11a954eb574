package extract

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adversarial = []string{
	"",
	" ",
	"\x00\xff\xfe",
	"12345678901",
	"1234567890123",
	"ИНН 77070838930 и 500100732259",
	"Петров Алексей Сергеевич Иванов Иван",
	"Андрей Ёлкин",
	"ПЕТРОВ АЛЕКСЕЙ",
	" Иванов Иван ",
	"{\"ИНН\": \"7707083893\"}",
	"<ФИО> null не найдено",
	"Іванов Іван",
	"Петров1 Алексей 1234567890x",
}

func checkValidated(t *testing.T, res Result, in string) {
	t.Helper()
	if res.TaxID != nil {
		v, ok := ValidateTaxID(*res.TaxID)
		assert.True(t, ok, in)
		assert.Equal(t, *res.TaxID, v, in)
	}
	if res.FullName != nil {
		v, ok := ValidateFullName(*res.FullName)
		assert.True(t, ok, in)
		assert.Equal(t, *res.FullName, v, in)
	}
}

func TestValidatorsAreTotal(t *testing.T) {
	for _, in := range adversarial {
		if v, ok := ValidateTaxID(in); ok {
			assert.Contains(t, []int{10, 12}, len(v), in)
		} else {
			assert.Empty(t, v, in)
		}
		if v, ok := ValidateFullName(in); ok {
			assert.NotEmpty(t, v, in)
			again, ok := ValidateFullName(v)
			assert.True(t, ok, in)
			assert.Equal(t, v, again, in)
		}
	}
}

func TestRuleBasedDeterministicAndValidated(t *testing.T) {
	for _, in := range adversarial {
		a, b := RuleBased(in), RuleBased(in)
		assert.Equal(t, a, b, in)
		assert.Equal(t, MethodRuleBased, a.Method, in)
		checkValidated(t, a, in)
	}
}

func TestParseResponseValidated(t *testing.T) {
	for _, out := range adversarial {
		for _, orig := range adversarial {
			checkValidated(t, ParseResponse(out, orig), out+" | "+orig)
		}
	}
}

// Every orchestrator path yields validated fields and never overwrites a
// rule-based value.
func TestExtractResultsAreValidated(t *testing.T) {
	answers := append([]string{
		"ИНН: 12345678901 (1 лишняя)\nФИО: не указано в тексте",
		`{"ИНН": "500100732259", "ФИО": "Сидорова Анна"}`,
		"ФИО: Петров Алексей (клиент)",
	}, adversarial...)
	for _, answer := range answers {
		c := replying(answer)
		o := New(c)
		for _, in := range adversarial {
			ruled := RuleBased(in)
			res := o.Extract(context.Background(), in)
			checkValidated(t, res, answer+" | "+in)
			if ruled.TaxID != nil {
				require.NotNil(t, res.TaxID)
				assert.Equal(t, *ruled.TaxID, *res.TaxID)
			}
			if ruled.FullName != nil {
				require.NotNil(t, res.FullName)
				assert.Equal(t, *ruled.FullName, *res.FullName)
			}
		}
	}
}

func FuzzValidateTaxID(f *testing.F) {
	for _, s := range adversarial {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, in string) {
		v, ok := ValidateTaxID(in)
		if ok && len(v) != 10 && len(v) != 12 {
			t.Fatalf("%q -> %q", in, v)
		}
		if !ok && v != "" {
			t.Fatalf("%q rejected with value %q", in, v)
		}
	})
}

func FuzzValidateFullName(f *testing.F) {
	for _, s := range adversarial {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, in string) {
		v, ok := ValidateFullName(in)
		if !ok {
			return
		}
		if !utf8.ValidString(v) || v == "" {
			t.Fatalf("%q -> %q", in, v)
		}
		if again, ok := ValidateFullName(v); !ok || again != v {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, v, again)
		}
	})
}

func FuzzRuleBased(f *testing.F) {
	for _, s := range adversarial {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, in string) {
		a, b := RuleBased(in), RuleBased(in)
		if !assert.ObjectsAreEqual(a, b) {
			t.Fatalf("non-deterministic on %q: %+v vs %+v", in, a, b)
		}
		checkValidated(t, a, in)
	})
}
