package valueobject

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cents int64
	}{
		{"whole", "25", 2500},
		{"two places", "25.00", 2500},
		{"one place", "0.1", 10},
		{"trailing zeros", "26.000", 2600},
		{"negative", "-4.50", -450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Cents())
		})
	}

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := NewMoneyFromString("999999999999999999999")
		assert.ErrorIs(t, err, ErrMoneyOverflow)
	})

	for _, input := range []string{"26.004", "0.333", "0.005", "-1.001"} {
		t.Run("sub-cent "+input, func(t *testing.T) {
			_, err := NewMoneyFromString(input)
			assert.ErrorIs(t, err, ErrMoneyPrecision)
		})
	}
}

func TestNewMoneyFromDecimal_Rounding(t *testing.T) {
	tests := []struct {
		input string
		cents int64
	}{
		{"0.005", 1},
		{"1.234", 123},
		{"2.675", 268},
		{"-0.005", -1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := NewMoneyFromDecimal(decimal.RequireFromString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Cents())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("10.10")
	b := MustMoney("0.20")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.30", sum.String())

	diff, err := b.Subtract(a)
	require.NoError(t, err)
	assert.Equal(t, "-9.90", diff.String())
	assert.True(t, diff.IsNegative())

	product, err := MustMoney("0.10").MultiplyByInt(3)
	require.NoError(t, err)
	assert.Equal(t, int64(30), product.Cents())

	t.Run("add overflow", func(t *testing.T) {
		_, err := NewMoneyFromCents(math.MaxInt64).Add(NewMoneyFromCents(1))
		assert.ErrorIs(t, err, ErrMoneyOverflow)
	})

	t.Run("multiply overflow", func(t *testing.T) {
		_, err := NewMoneyFromCents(math.MaxInt64 / 2).MultiplyByInt(3)
		assert.ErrorIs(t, err, ErrMoneyOverflow)
	})
}

func TestMoney_ApplyPercent(t *testing.T) {
	tests := []struct {
		amount  string
		percent string
		want    string
	}{
		{"65.00", "10", "6.50"},
		{"58.50", "8", "4.68"},
		{"60.00", "10", "6.00"},
		{"0.05", "50", "0.03"},
		{"100.00", "0", "0.00"},
		{"19.99", "8.25", "1.65"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"x"+tt.percent, func(t *testing.T) {
			got, err := MustMoney(tt.amount).ApplyPercent(MustPercent(tt.percent))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMoney_ClampAndMax(t *testing.T) {
	lo, hi := Zero(), MustMoney("10.00")
	assert.Equal(t, lo, MustMoney("-1.00").Clamp(lo, hi))
	assert.Equal(t, hi, MustMoney("12.00").Clamp(lo, hi))
	assert.Equal(t, "5.00", MustMoney("5.00").Clamp(lo, hi).String())
	assert.Equal(t, hi, Max(lo, hi))
}

func TestMoney_Display(t *testing.T) {
	assert.Equal(t, "$1,234.50", NewMoneyFromCents(123450).Display(USD, language.English))
	assert.Equal(t, "-$0.05", NewMoneyFromCents(-5).Display(USD, language.English))
	assert.Equal(t, "€12.00", NewMoneyFromCents(1200).Display(EUR, language.English))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("66"))
	require.NoError(t, err)
	assert.Equal(t, `"66.00"`, string(data))

	var fromString Money
	require.NoError(t, json.Unmarshal([]byte(`"26.00"`), &fromString))
	assert.Equal(t, int64(2600), fromString.Cents())

	var fromNumber Money
	require.NoError(t, json.Unmarshal([]byte(`40.5`), &fromNumber))
	assert.Equal(t, int64(4050), fromNumber.Cents())

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))

	subCent := MustMoney("9.99")
	assert.ErrorIs(t, json.Unmarshal([]byte(`"26.004"`), &subCent), ErrMoneyPrecision)
	assert.ErrorIs(t, json.Unmarshal([]byte(`0.333`), &subCent), ErrMoneyPrecision)
	assert.Equal(t, int64(999), subCent.Cents())
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := MustMoney("12.34").Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1234), v)

	var m Money
	require.NoError(t, m.Scan(int64(99)))
	assert.Equal(t, int64(99), m.Cents())
	require.NoError(t, m.Scan([]byte("150")))
	assert.Equal(t, int64(150), m.Cents())
	assert.Error(t, m.Scan("1.5"))
	assert.Error(t, m.Scan(1.5))
	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}

func TestSum(t *testing.T) {
	total, err := Sum(MustMoney("0.10"), MustMoney("0.20"), MustMoney("0.30"))
	require.NoError(t, err)
	assert.True(t, total.Decimal().Equal(decimal.RequireFromString("0.6")))
}
