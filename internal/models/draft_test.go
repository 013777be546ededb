package models

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traders/internal/common"
)

func floatPtr(v float64) *float64 { return &v }

func testProduct(id int, name string, price float64) *Product {
	return &Product{ID: id, Name: name, UnitPrice: floatPtr(price)}
}

func TestDraftOrder_AddLineMergesQuantityAndKeepsFirstDiscount(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		d := NewDraftOrder()
		p := testProduct(7, "Uncle Bob's Organic Dried Pears", 30)

		q1, q2 := 1+rng.IntN(100), 1+rng.IntN(100)
		d1, d2 := rng.Float64()*100, rng.Float64()*100

		require.NoError(t, d.AddLine(p, ProductSelection{ProductID: 7, Quantity: q1, Discount: d1}))
		require.NoError(t, d.AddLine(p, ProductSelection{ProductID: 7, Quantity: q2, Discount: d2}))

		require.Len(t, d.Lines, 1)
		assert.Equal(t, q1+q2, d.Lines[0].Quantity)
		assert.Equal(t, d1, d.Lines[0].Discount)
	}
}

func TestDraftOrder_AddLineSnapshotsProduct(t *testing.T) {
	d := NewDraftOrder()
	p := testProduct(11, "Queso Cabrales", 21)
	require.NoError(t, d.AddLine(p, ProductSelection{ProductID: 11, Quantity: 2, Discount: 5}))

	p.Name = "Renamed"
	p.UnitPrice = floatPtr(99)
	require.NoError(t, d.AddLine(p, ProductSelection{ProductID: 11, Quantity: 1}))

	want := []DraftLine{{ProductID: 11, ProductName: "Queso Cabrales", UnitPrice: 21, Quantity: 3, Discount: 5}}
	if diff := cmp.Diff(want, d.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftOrder_AddLineValidation(t *testing.T) {
	tests := []struct {
		name  string
		sel   ProductSelection
		field string
	}{
		{name: "zero quantity", sel: ProductSelection{ProductID: 1, Quantity: 0}, field: "quantity"},
		{name: "negative quantity", sel: ProductSelection{ProductID: 1, Quantity: -3}, field: "quantity"},
		{name: "negative discount", sel: ProductSelection{ProductID: 1, Quantity: 1, Discount: -0.1}, field: "discount"},
		{name: "quantity over line maximum", sel: ProductSelection{ProductID: 1, Quantity: MaxLineQuantity + 1}, field: "quantity"},
		{name: "discount over 100", sel: ProductSelection{ProductID: 1, Quantity: 1, Discount: 100.5}, field: "discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraftOrder()
			err := d.AddLine(testProduct(1, "Chai", 18), tt.sel)

			verr, ok := common.AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, d.Lines)
		})
	}
}

func TestDraftOrder_AddLineRejectsMergePastMaximum(t *testing.T) {
	d := NewDraftOrder()
	p := testProduct(3, "Aniseed Syrup", 10)
	require.NoError(t, d.AddLine(p, ProductSelection{ProductID: 3, Quantity: MaxLineQuantity}))

	err := d.AddLine(p, ProductSelection{ProductID: 3, Quantity: 1})

	verr, ok := common.AsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Contains(t, verr.Fields, "quantity")
	require.Len(t, d.Lines, 1)
	assert.Equal(t, MaxLineQuantity, d.Lines[0].Quantity)
	assert.True(t, d.Totals().Total.IsPositive())
}

func TestDraftLine_Validate(t *testing.T) {
	tests := []struct {
		name  string
		line  DraftLine
		field string
	}{
		{name: "valid", line: DraftLine{ProductID: 1, Quantity: MaxLineQuantity, Discount: 100}},
		{name: "zero quantity", line: DraftLine{ProductID: 1, Quantity: 0}, field: "quantity"},
		{name: "negative quantity", line: DraftLine{ProductID: 1, Quantity: -9}, field: "quantity"},
		{name: "quantity over maximum", line: DraftLine{ProductID: 1, Quantity: MaxLineQuantity + 1}, field: "quantity"},
		{name: "negative discount", line: DraftLine{ProductID: 1, Quantity: 1, Discount: -1}, field: "discount"},
		{name: "discount over 100", line: DraftLine{ProductID: 1, Quantity: 1, Discount: 101}, field: "discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			verr, ok := common.AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestDraftOrder_AddLineBoundaryDiscounts(t *testing.T) {
	d := NewDraftOrder()
	require.NoError(t, d.AddLine(testProduct(1, "Chai", 18), ProductSelection{ProductID: 1, Quantity: 1, Discount: 0}))
	require.NoError(t, d.AddLine(testProduct(2, "Chang", 19), ProductSelection{ProductID: 2, Quantity: 1, Discount: 100}))
	assert.Len(t, d.Lines, 2)
}

func TestDraftOrder_AddLineRejectsDiscontinued(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	p := testProduct(5, "Chef Anton's Gumbo Mix", 21.35)
	p.Discontinued = true

	for i := 0; i < 100; i++ {
		sel := ProductSelection{
			ProductID: 5,
			Quantity:  rng.IntN(200) - 50,
			Discount:  rng.Float64()*300 - 100,
		}
		d := NewDraftOrder()
		err := d.AddLine(p, sel)

		verr, ok := common.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "product")
		assert.Empty(t, d.Lines)
	}
}

func TestDraftOrder_RemoveLineIsIdempotent(t *testing.T) {
	d := NewDraftOrder()
	require.NoError(t, d.AddLine(testProduct(1, "Chai", 18), ProductSelection{ProductID: 1, Quantity: 2}))
	require.NoError(t, d.AddLine(testProduct(2, "Chang", 19), ProductSelection{ProductID: 2, Quantity: 1}))
	before := append([]DraftLine(nil), d.Lines...)

	assert.False(t, d.RemoveLine(99))
	if diff := cmp.Diff(before, d.Lines); diff != "" {
		t.Errorf("removing an absent product changed the draft (-want +got):\n%s", diff)
	}

	assert.True(t, d.RemoveLine(1))
	assert.False(t, d.RemoveLine(1))
	require.Len(t, d.Lines, 1)
	assert.Equal(t, 2, d.Lines[0].ProductID)
}

func TestDraftOrder_TotalsMatchFormula(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 100; i++ {
		d := NewDraftOrder()
		expected := 0.0
		lines := 1 + rng.IntN(8)
		for id := 1; id <= lines; id++ {
			price := rng.Float64() * 10000
			qty := 1 + rng.IntN(100)
			discount := rng.Float64() * 100
			require.NoError(t, d.AddLine(testProduct(id, "p", price), ProductSelection{ProductID: id, Quantity: qty, Discount: discount}))
			expected += price * float64(qty) * (1 - discount/100)
		}

		totals := d.Totals()
		require.Len(t, totals.Lines, lines)

		sum := decimal.Zero
		for _, l := range totals.Lines {
			want := l.UnitPrice * float64(l.Quantity) * (1 - l.Discount/100)
			assert.InDelta(t, want, l.Total.InexactFloat64(), 1e-6)
			sum = sum.Add(l.Total)
		}
		assert.True(t, sum.Equal(totals.Total))
		assert.InDelta(t, expected, totals.Total.InexactFloat64(), 1e-4)
	}
}

func TestDraftOrder_TotalsHasNoSideEffects(t *testing.T) {
	d := NewDraftOrder()
	require.NoError(t, d.AddLine(testProduct(1, "Chai", 18), ProductSelection{ProductID: 1, Quantity: 3, Discount: 10}))
	before := append([]DraftLine(nil), d.Lines...)

	first := d.Totals()
	second := d.Totals()

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, "48.6", first.Total.String())
	assert.Equal(t, before, d.Lines)
}

func TestOrderDetailsForm_RequiredDateBoundary(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	base := OrderDetailsForm{EmployeeID: 1, ShipperID: 2}

	today := base
	today.RequiredDate = "2024-03-10"
	_, err := today.Validate(now)
	verr, ok := common.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Required date must be in the future.", verr.Fields["required_date"])

	past := base
	past.RequiredDate = "2024-03-01"
	_, err = past.Validate(now)
	require.Error(t, err)

	tomorrow := base
	tomorrow.RequiredDate = "2024-03-11"
	details, err := tomorrow.Validate(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), details.RequiredDate)
	assert.True(t, details.Complete())
}

func TestOrderDetailsForm_FieldErrors(t *testing.T) {
	form := OrderDetailsForm{
		RequiredDate: "not-a-date",
		Ship:         ShipAddress{City: "Far Too Long A City Name"},
	}
	_, err := form.Validate(time.Now())

	verr, ok := common.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Select a valid choice.", verr.Fields["employee"])
	assert.Equal(t, "Select a valid choice.", verr.Fields["shipper"])
	assert.Equal(t, "Enter a valid date.", verr.Fields["required_date"])
	assert.Contains(t, verr.Fields["ship_city"], "at most 15 characters")
}

func TestNewOrderDetailsForm_PrefillsFromCustomer(t *testing.T) {
	city := "Berlin"
	country := "Germany"
	c := &Customer{ID: "ALFKI", CompanyName: "Alfreds Futterkiste", City: &city, Country: &country}
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	form := NewOrderDetailsForm(nil, c, now)

	assert.Equal(t, "2024-03-17", form.RequiredDate)
	assert.Equal(t, "Alfreds Futterkiste", form.Ship.Name)
	assert.Equal(t, "Berlin", form.Ship.City)
	assert.Equal(t, "Germany", form.Ship.Country)
	assert.Empty(t, form.Ship.Region)
}
