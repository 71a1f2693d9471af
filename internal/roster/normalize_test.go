package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDiacritics(t *testing.T) {
	assert.Equal(t, "Jiri", RemoveDiacritics("Jiří"))
	assert.Equal(t, "Zofie Novakova", RemoveDiacritics("Žofie Nováková"))
	assert.Equal(t, "plain", RemoveDiacritics("plain"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jiri novak", NormalizeName("Jiří Novák"))
	assert.Equal(t, "anna marie", NormalizeName("Anna-Marie"))
}

func TestMatchesName(t *testing.T) {
	assert.True(t, MatchesName("Jiří Novák", "novak"))
	assert.True(t, MatchesName("Jiří Novák", "JIŘÍ"))
	assert.True(t, MatchesName("Jiří Novák", ""))
	assert.False(t, MatchesName("Jiří Novák", "svoboda"))
}
