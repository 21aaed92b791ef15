package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestT(t *testing.T) {
	require.NoError(t, Initialize(LangPortuguese))

	assert.Equal(t, "Produto não encontrado", T(LangPortuguese, KeyProductNotFound))
	assert.Equal(t, "Product not found", T(LangEnglish, KeyProductNotFound))
	assert.Equal(t, "Produto movido para Aprovado", T(LangPortuguese, KeyStageMoved, "Aprovado"))

	// unknown language falls back to the default
	assert.Equal(t, "Sucesso", T("fr", KeySuccess))
	assert.Equal(t, "missing.key", T(LangEnglish, "missing.key"))
	assert.ElementsMatch(t, []string{LangEnglish, LangPortuguese}, GetSupportedLanguages())
}
