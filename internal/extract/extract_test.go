package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose view worker starts in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestValidateTaxID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7707083893", "7707083893", true},
		{"123456789012", "123456789012", true},
		{"77-07-08 3893", "7707083893", true},
		{"12345678901", "", false},
		{"1234567890123", "", false},
		{"нет", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ValidateTaxID(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestValidateFullName(t *testing.T) {
	got, ok := ValidateFullName("  Иванов \t Иван,  Иванович!! ")
	require.True(t, ok)
	assert.Equal(t, "Иванов Иван Иванович", got)

	got, ok = ValidateFullName("Ёлкин Пётр")
	require.True(t, ok)
	assert.Equal(t, "Ёлкин Пётр", got)

	_, ok = ValidateFullName("John Smith 42")
	assert.False(t, ok)

	_, ok = ValidateFullName("   ")
	assert.False(t, ok)
}

func TestValidateFullNameIdempotent(t *testing.T) {
	for _, in := range []string{"Петров  Алексей\nСергеевич", "x Сидорова y Мария", "Ёж"} {
		once, ok := ValidateFullName(in)
		require.True(t, ok, in)
		twice, ok := ValidateFullName(once)
		require.True(t, ok, once)
		assert.Equal(t, once, twice)
	}
}

func TestValidateFullNameComposesDecomposedLetters(t *testing.T) {
	// и + combining breve must survive as й.
	got, ok := ValidateFullName("Андреи\u0306")
	require.True(t, ok)
	assert.Equal(t, "Андрей", got)
}

func TestRuleBasedBothFields(t *testing.T) {
	res := RuleBased("Клиент: Петров Алексей Сергеевич, ИНН 123456789012")
	assert.Equal(t, MethodRuleBased, res.Method)
	assert.Equal(t, "123456789012", res.TaxIDValue())
	assert.Equal(t, "Петров Алексей Сергеевич", res.FullNameValue())
	assert.Nil(t, res.RawModelOutput)
	assert.Nil(t, res.Error)
}

func TestRuleBasedRejectsWrongLengthRuns(t *testing.T) {
	assert.Nil(t, RuleBased("ИНН 12345678901").TaxID)
	assert.Nil(t, RuleBased("счёт 1234567890123").TaxID)

	res := RuleBased("тел 12345678901, ИНН 7707083893")
	assert.Equal(t, "7707083893", res.TaxIDValue())
}

func TestRuleBasedDigitRunNextToLetters(t *testing.T) {
	assert.Equal(t, "7707083893", RuleBased("ИНН7707083893руб").TaxIDValue())
}

func TestRuleBasedPrefersThreeWordName(t *testing.T) {
	res := RuleBased("подписал Сидоров Пётр, а принял Иванов Иван Иванович")
	assert.Equal(t, "Иванов Иван Иванович", res.FullNameValue())

	res = RuleBased("мистер Иванов Иван пришёл")
	assert.Equal(t, "Иванов Иван", res.FullNameValue())
}

func TestRuleBasedNameNeedsWordBoundary(t *testing.T) {
	assert.Nil(t, RuleBased("ООО ромашка").FullName)
	assert.Nil(t, RuleBased("xИванов Иван").FullName)
	assert.Nil(t, RuleBased("Просто текст без данных").FullName)
}

func TestRuleBasedNothing(t *testing.T) {
	res := RuleBased("")
	assert.Nil(t, res.TaxID)
	assert.Nil(t, res.FullName)
	assert.Equal(t, MethodRuleBased, res.Method)
}
