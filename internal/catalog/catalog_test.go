package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruki/examquest/internal/catalog"
)

func TestLoad(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	assert.Len(t, c.Categories(), 8)
	assert.Len(t, c.ExamSets(), 2)
	assert.NotEmpty(t, c.AllQuestions())
}

func TestLoadCategoryCounts(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	for _, cat := range c.Categories() {
		assert.Equal(t, len(c.CategoryPool(cat.ID)), cat.QuestionCount, "category %s", cat.ID)
		assert.Greater(t, cat.QuestionCount, 0, "category %s must have questions", cat.ID)
	}
}

func TestQuestionInvariants(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, q := range c.AllQuestions() {
		assert.False(t, seen[q.ID], "duplicate question id %d", q.ID)
		seen[q.ID] = true
		assert.GreaterOrEqual(t, q.Correct, 0)
		assert.Less(t, q.Correct, len(q.Answers))
		assert.NotEmpty(t, q.Text)
		assert.NotEmpty(t, q.Explanation)
	}
}

func TestQuestionByID(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	q, ok := c.QuestionByID(9001)
	require.True(t, ok)
	assert.Equal(t, "fe-2023-spring-sample", q.Source.SetID)

	_, ok = c.QuestionByID(424242)
	assert.False(t, ok)
}

func TestUnknownPoolsAreNil(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	assert.Nil(t, c.CategoryPool("no-such-category"))
	assert.Nil(t, c.PastExamPool("no-such-set"))
}

func TestPastExamLabel(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	assert.Equal(t, "令和5年 春期 基本情報", catalog.PastExamLabel(c, "fe-2023-spring-sample"))
	assert.Equal(t, "令和4年 秋期 基本情報", catalog.PastExamLabel(c, "fe-2022-autumn-sample"))
	assert.Equal(t, "unknown-set", catalog.PastExamLabel(c, "unknown-set"))
}
