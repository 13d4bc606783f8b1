package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	negative := -10
	valid := MenuItem{Name: "Paneer Tikka", Category: "Starters", Price: decimal.NewFromInt(180), Rating: 4.5}

	tests := []struct {
		name   string
		mutate func(*MenuItem)
		want   error
	}{
		{"valid item", func(*MenuItem) {}, nil},
		{"blank name", func(m *MenuItem) { m.Name = "   " }, ErrNameRequired},
		{"missing category", func(m *MenuItem) { m.Category = "" }, ErrCategoryRequired},
		{"negative price", func(m *MenuItem) { m.Price = decimal.NewFromInt(-1) }, ErrNegativePrice},
		{"free item is allowed", func(m *MenuItem) { m.Price = decimal.Zero }, nil},
		{"rating above five", func(m *MenuItem) { m.Rating = 5.1 }, ErrInvalidRating},
		{"negative calories", func(m *MenuItem) { m.Calories = &negative }, ErrInvalidCalories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)

			err := Validate(&item)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestValidateImageExtension(t *testing.T) {
	ct, err := ValidateImageExtension("thali.JPG")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	ct, err = ValidateImageExtension("dosa.webp")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", ct)

	_, err = ValidateImageExtension("menu.pdf")
	require.ErrorIs(t, err, ErrBadImage)

	_, err = ValidateImageExtension("noext")
	require.ErrorIs(t, err, ErrBadImage)
}

func TestUpdateApply(t *testing.T) {
	item := MenuItem{Name: "Masala Dosa", Price: decimal.NewFromInt(90), Available: true}

	name := "Mysore Masala Dosa"
	off := false
	Update{Name: &name, Available: &off}.Apply(&item)

	assert.Equal(t, "Mysore Masala Dosa", item.Name)
	assert.False(t, item.Available)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(90)), "unset fields are left alone")
}
