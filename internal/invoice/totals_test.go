package invoice

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicer/internal/money"
	"invoicer/pkg/models"
)

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(NewInvoice(fixedToday))

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TotalDiscount.IsZero())
	assert.True(t, totals.FinalTotal.IsZero())
}

func TestComputeTotalsWithDiscount(t *testing.T) {
	env := testEnv()
	inv := ApplyAll(NewInvoice(fixedToday), env, AddItem{}, AddItem{}, AddDiscount{})
	inv = ApplyAll(inv, env,
		UpdateItem{ID: inv.Items[0].ID, Field: ItemQuantity, Value: "2"},
		UpdateItem{ID: inv.Items[0].ID, Field: ItemPrice, Value: "100"},
		UpdateItem{ID: inv.Items[1].ID, Field: ItemPrice, Value: "50"},
		UpdateDiscount{ID: inv.Discounts[0].ID, Field: DiscountAmount, Value: "30"},
	)

	totals := ComputeTotals(inv)

	assert.True(t, totals.Subtotal.Equal(dec("250")), totals.Subtotal.String())
	assert.True(t, totals.TotalDiscount.Equal(dec("30")))
	assert.True(t, totals.FinalTotal.Equal(dec("220")))
}

func TestComputeTotalsDiscountExceedsSubtotal(t *testing.T) {
	env := testEnv()
	inv := ApplyAll(NewInvoice(fixedToday), env, AddItem{}, AddDiscount{})
	inv = ApplyAll(inv, env,
		UpdateItem{ID: inv.Items[0].ID, Field: ItemPrice, Value: "10"},
		UpdateDiscount{ID: inv.Discounts[0].ID, Field: DiscountAmount, Value: "25"},
	)

	totals := ComputeTotals(inv)

	assert.True(t, totals.FinalTotal.Equal(dec("-15")))
}

func TestComputeTotalsIsExact(t *testing.T) {
	env := testEnv()
	inv := NewInvoice(fixedToday)
	for i := 0; i < 10; i++ {
		inv = Apply(inv, AddItem{}, env)
		inv = Apply(inv, UpdateItem{ID: inv.Items[i].ID, Field: ItemPrice, Value: "0.1"}, env)
	}

	assert.Equal(t, "1", ComputeTotals(inv).Subtotal.String())
}

func TestComputeTotalsIgnoresOrder(t *testing.T) {
	env := testEnv()
	inv := NewInvoice(fixedToday)
	prices := []string{"19.99", "0.05", "120", "3.333", "75.5"}
	for i, price := range prices {
		inv = ApplyAll(inv, env, AddItem{}, AddDiscount{})
		inv = ApplyAll(inv, env,
			UpdateItem{ID: inv.Items[i].ID, Field: ItemQuantity, Value: fmt.Sprint(i + 1)},
			UpdateItem{ID: inv.Items[i].ID, Field: ItemPrice, Value: price},
			UpdateDiscount{ID: inv.Discounts[i].ID, Field: DiscountAmount, Value: price},
		)
	}
	want := ComputeTotals(inv)

	reversed := inv.Clone()
	slices.Reverse(reversed.Items)
	slices.Reverse(reversed.Discounts)

	rotated := inv.Clone()
	rotated.Items = slices.Concat(rotated.Items[2:], rotated.Items[:2])
	rotated.Discounts = slices.Concat(rotated.Discounts[3:], rotated.Discounts[:3])

	for _, other := range []models.Invoice{reversed, rotated} {
		got := ComputeTotals(other)
		assert.True(t, got.Subtotal.Equal(want.Subtotal), got.Subtotal.String())
		assert.True(t, got.TotalDiscount.Equal(want.TotalDiscount), got.TotalDiscount.String())
		assert.True(t, got.FinalTotal.Equal(want.FinalTotal), got.FinalTotal.String())
	}
	assert.Equal(t, "770.922", want.Subtotal.String())
}

func TestComputeTotalsWithHugeExponentInput(t *testing.T) {
	env := testEnv()
	inv := ApplyAll(NewInvoice(fixedToday), env, AddItem{}, AddDiscount{})
	inv = ApplyAll(inv, env,
		UpdateItem{ID: inv.Items[0].ID, Field: ItemPrice, Value: "1e5000000"},
		UpdateDiscount{ID: inv.Discounts[0].ID, Field: DiscountAmount, Value: "1e2000000000"},
	)

	totals := ComputeTotals(inv)

	assert.Equal(t, "0.00", money.Format(totals.Subtotal))
	assert.Equal(t, "0.00", money.Format(totals.FinalTotal))
}

func TestReviewFlagsNegativeTotal(t *testing.T) {
	env := testEnv()
	inv := ApplyAll(NewInvoice(fixedToday), env, AddItem{}, AddDiscount{})
	inv = ApplyAll(inv, env,
		UpdateItem{ID: inv.Items[0].ID, Field: ItemQuantity, Value: "0"},
		UpdateDiscount{ID: inv.Discounts[0].ID, Field: DiscountAmount, Value: "5"},
	)

	result := NewReviewer().Review(inv)

	assert.True(t, result.NegativeTotal)
	assert.Len(t, result.Warnings, 2)
	assert.True(t, result.Totals.FinalTotal.Equal(dec("-5")))
}

func TestReviewCleanInvoice(t *testing.T) {
	env := testEnv()
	inv := Apply(NewInvoice(fixedToday), AddItem{}, env)

	result := NewReviewer().Review(inv)

	assert.False(t, result.NegativeTotal)
	assert.Empty(t, result.Warnings)
}
