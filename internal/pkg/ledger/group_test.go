package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func tx(id uint, gatewayTxID, currency, amount, expectedCurrency string) models.PaymentTransaction {
	return models.PaymentTransaction{
		ID:                   id,
		UserID:               1,
		Amount:               decimal.RequireFromString(amount),
		Currency:             currency,
		Gateway:              "stripe",
		GatewayTransactionID: gatewayTxID,
		Status:               models.TxStatusCompleted,
		Details:              models.PaymentDetails{ExpectedCurrency: expectedCurrency},
	}
}

func findByID(t *testing.T, annotated []AnnotatedTransaction, id uint) AnnotatedTransaction {
	t.Helper()
	for _, a := range annotated {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("transaction %d missing from output", id)
	return AnnotatedTransaction{}
}

func TestGroupAndMarkPrimary_SingletonCarriesNoFlags(t *testing.T) {
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(1, "pay_solo", "INR", "500", "INR"),
	})

	require.Len(t, out, 1)
	assert.False(t, out[0].IsPrimary)
	assert.False(t, out[0].IsDuplicate)
}

func TestGroupAndMarkPrimary_CurrencyMatchWins(t *testing.T) {
	// The gateway booked the same payment twice: once as a zero USD
	// placeholder, once as the real INR charge.
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(10, "pay_123", "USD", "0.00", "INR"),
		tx(11, "pay_123", "INR", "500.00", "INR"),
	})

	require.Len(t, out, 2)
	a := findByID(t, out, 10)
	b := findByID(t, out, 11)

	assert.True(t, b.IsPrimary)
	assert.False(t, b.IsDuplicate)
	assert.True(t, a.IsDuplicate)
	assert.False(t, a.IsPrimary)
}

func TestGroupAndMarkPrimary_CurrencyMatchBeatsLargerAmount(t *testing.T) {
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(20, "pay_456", "USD", "9999.00", "INR"),
		tx(21, "pay_456", "INR", "1.00", "INR"),
	})

	assert.True(t, findByID(t, out, 21).IsPrimary)
	assert.True(t, findByID(t, out, 20).IsDuplicate)
}

func TestGroupAndMarkPrimary_LargestPositiveAmountFallback(t *testing.T) {
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(30, "pay_789", "USD", "0.00", "INR"),
		tx(31, "pay_789", "USD", "12.00", "INR"),
		tx(32, "pay_789", "USD", "45.00", "INR"),
	})

	assert.True(t, findByID(t, out, 32).IsPrimary)
	assert.True(t, findByID(t, out, 30).IsDuplicate)
	assert.True(t, findByID(t, out, 31).IsDuplicate)
}

func TestGroupAndMarkPrimary_AllZeroKeepsFirstRow(t *testing.T) {
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(41, "pay_zero", "USD", "0", "INR"),
		tx(40, "pay_zero", "USD", "0", "INR"),
	})

	// Rows are id-sorted before grouping, so "first" is the lowest id.
	assert.True(t, findByID(t, out, 40).IsPrimary)
	assert.True(t, findByID(t, out, 41).IsDuplicate)
}

func TestGroupAndMarkPrimary_ExactlyOnePrimaryPerGroup(t *testing.T) {
	input := []models.PaymentTransaction{
		tx(1, "pay_a", "INR", "500", "INR"),
		tx(2, "pay_a", "USD", "6.2", "INR"),
		tx(3, "pay_a", "USD", "0", "INR"),
		tx(4, "pay_b", "USD", "12", "USD"),
		tx(5, "pay_b", "USD", "12", "USD"),
		tx(6, "pay_c", "USD", "9", "USD"),
	}

	out := GroupAndMarkPrimary(input)
	require.Len(t, out, len(input))

	primaries := map[string]int{}
	duplicates := map[string]int{}
	for _, a := range out {
		if a.IsPrimary {
			primaries[a.GatewayTransactionID]++
		}
		if a.IsDuplicate {
			duplicates[a.GatewayTransactionID]++
		}
	}

	assert.Equal(t, 1, primaries["pay_a"])
	assert.Equal(t, 2, duplicates["pay_a"])
	assert.Equal(t, 1, primaries["pay_b"])
	assert.Equal(t, 1, duplicates["pay_b"])
	// Singleton group: no flags at all.
	assert.Equal(t, 0, primaries["pay_c"])
	assert.Equal(t, 0, duplicates["pay_c"])
}

func TestGroupAndMarkPrimary_MissingGatewayIDPassesThrough(t *testing.T) {
	out := GroupAndMarkPrimary([]models.PaymentTransaction{
		tx(50, "", "USD", "10", "USD"),
		tx(51, "", "USD", "10", "USD"),
	})

	require.Len(t, out, 2)
	for _, a := range out {
		assert.False(t, a.IsPrimary)
		assert.False(t, a.IsDuplicate)
	}
}

func TestGroupAndMarkPrimary_DeterministicAcrossInputOrder(t *testing.T) {
	forward := []models.PaymentTransaction{
		tx(1, "pay_x", "USD", "0", "INR"),
		tx(2, "pay_x", "INR", "500", "INR"),
		tx(3, "pay_y", "USD", "12", "USD"),
	}
	reversed := []models.PaymentTransaction{forward[2], forward[1], forward[0]}

	a := GroupAndMarkPrimary(forward)
	b := GroupAndMarkPrimary(reversed)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID, "position %d", i)
		assert.Equal(t, a[i].IsPrimary, b[i].IsPrimary, "position %d", i)
		assert.Equal(t, a[i].IsDuplicate, b[i].IsDuplicate, "position %d", i)
	}
}
