package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Greater(t, c.Len(), 0)

	r, ok := c.Get("reviewer_10")
	require.True(t, ok)
	assert.Equal(t, string(StatTotalReviews), r.RuleStat)
	assert.Equal(t, 10, r.RuleThreshold)

	for i, title := range c.Titles() {
		assert.Equal(t, i, title.SortOrder)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad grade": `
titles:
  - {id: a, name: A, grade: mythic, bonus: 1, rule: {stat: total_reviews, threshold: 1}}`,
		"unknown stat": `
titles:
  - {id: a, name: A, grade: common, bonus: 1, rule: {stat: likes, threshold: 1}}`,
		"duplicate id": `
titles:
  - {id: a, name: A, grade: common, bonus: 1, rule: {stat: books, threshold: 1}}
  - {id: a, name: B, grade: common, bonus: 1, rule: {stat: books, threshold: 2}}`,
		"zero threshold": `
titles:
  - {id: a, name: A, grade: common, bonus: 1, rule: {stat: books, threshold: 0}}`,
		"empty": `titles: []`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSatisfied(t *testing.T) {
	title := model.AchievementTitle{RuleStat: string(StatTotalReviews), RuleThreshold: 10}
	assert.False(t, Satisfied(title, Stats{StatTotalReviews: 9}))
	assert.True(t, Satisfied(title, Stats{StatTotalReviews: 10}))
	assert.False(t, Satisfied(title, Stats{}))
}

func TestSortForDisplay(t *testing.T) {
	titles := []model.AchievementTitle{
		{ID: "leg", Grade: model.GradeLegendary, SortOrder: 0},
		{ID: "rare", Grade: model.GradeRare, SortOrder: 1},
		{ID: "c2", Grade: model.GradeCommon, SortOrder: 3},
		{ID: "c1", Grade: model.GradeCommon, SortOrder: 2},
	}
	SortForDisplay(titles)

	var ids []string
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "rare", "leg"}, ids)
}
