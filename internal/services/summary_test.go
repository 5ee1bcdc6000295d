package services

import (
	"testing"

	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := Summarize(nil)
		assert.Empty(t, s.PerCategory)
		assert.NotNil(t, s.PerCategory)
		assert.Zero(t, s.Total)
	})

	t.Run("total equals sum of categories", func(t *testing.T) {
		rows := []models.CategoryAmount{
			{Category: models.CategoryFood, Amount: 10},
			{Category: models.CategoryOther, Amount: 33},
			{Category: models.CategoryFood, Amount: 1},
			{Category: models.CategoryEntertainment, Amount: 99999},
		}
		s := Summarize(rows)

		var sum models.Money
		for _, v := range s.PerCategory {
			sum += v
		}
		assert.Equal(t, s.Total, sum)
		assert.Equal(t, models.Money(11), s.PerCategory[models.CategoryFood])
		assert.NotContains(t, s.PerCategory, models.CategoryBills)
	})

	t.Run("amounts at the cap do not overflow", func(t *testing.T) {
		rows := make([]models.CategoryAmount, 1000)
		for i := range rows {
			rows[i] = models.CategoryAmount{Category: models.CategoryFood, Amount: models.MaxMoney}
		}
		s := Summarize(rows)

		assert.Equal(t, 1000*models.MaxMoney, s.Total)
		assert.Equal(t, s.Total, s.PerCategory[models.CategoryFood])
		assert.Positive(t, int64(s.Total))
	})
}
