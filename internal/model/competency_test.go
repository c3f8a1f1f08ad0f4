package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCompetenciesCoversEveryCategory(t *testing.T) {
	seed := SeedCompetencies()
	require.Len(t, seed, 6)

	byCategory := make(map[CompetencyCategory]*Competency, len(seed))
	for _, c := range seed {
		byCategory[c.Category] = c
	}

	for _, category := range []CompetencyCategory{
		CategoryPatientCare,
		CategoryMedicalKnowledge,
		CategoryPracticeBasedLearning,
		CategoryInterpersonalSkills,
		CategoryProfessionalism,
		CategorySystemsBasedPractice,
	} {
		c, ok := byCategory[category]
		require.True(t, ok, "category %s", category)
		assert.NotEmpty(t, c.Name)
		assert.Greater(t, c.MinimumScore, 0.0)
		assert.LessOrEqual(t, c.MinimumScore, 100.0)
	}

	assert.Equal(t, 80.0, byCategory[CategoryProfessionalism].MinimumScore)
}
