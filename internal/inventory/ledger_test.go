package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodlandforecast/backend-go/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func movement(material string, d time.Time, opening, inflow, consumed, closing string) domain.InventoryMovement {
	return domain.InventoryMovement{
		Date:             d,
		RawMaterial:      material,
		OpeningInventory: dec(opening),
		InflowQuantity:   dec(inflow),
		ConsumedQuantity: dec(consumed),
		ClosingInventory: dec(closing),
		SafetyStock:      dec("10"),
	}
}

func TestBuildLedgerEmptyInput(t *testing.T) {
	_, err := BuildLedger(nil)
	require.ErrorIs(t, err, ErrEmptyMovements)
}

func TestBuildLedgerValidatesClosingBalance(t *testing.T) {
	movements := []domain.InventoryMovement{
		movement("FLOUR", day(0), "100", "20", "30", "90"),
		movement("FLOUR", day(1), "90", "0", "15", "80"), // stored 80, recomputed 75
	}

	entries, err := BuildLedger(movements)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].ValidationStatus)
	assert.True(t, entries[0].CalculatedClosingInventory.Equal(dec("90")))

	assert.False(t, entries[1].ValidationStatus)
	assert.True(t, entries[1].CalculatedClosingInventory.Equal(dec("75")))
	// The stored value is flagged, never corrected.
	assert.True(t, entries[1].ClosingInventory.Equal(dec("80")))
}

func TestBuildLedgerChainBreaksStayPerRow(t *testing.T) {
	// Validation is per row only: a day whose opening does not continue the
	// previous day's closing is not flagged as long as the row itself
	// balances, and the discontinuity never leaks into neighbouring rows.
	movements := []domain.InventoryMovement{
		movement("FLOUR", day(0), "100", "0", "10", "90"),
		movement("FLOUR", day(1), "70", "0", "10", "60"), // opening 70 after closing 90
		movement("FLOUR", day(2), "60", "0", "10", "55"), // stored 55, recomputed 50
	}

	entries, err := BuildLedger(movements)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].ValidationStatus)
	assert.True(t, entries[1].ValidationStatus)
	assert.True(t, entries[1].CalculatedClosingInventory.Equal(dec("60")))

	assert.False(t, entries[2].ValidationStatus)
	assert.True(t, entries[2].CalculatedClosingInventory.Equal(dec("50")))
}

func TestBuildLedgerSortsPerMaterial(t *testing.T) {
	movements := []domain.InventoryMovement{
		movement("SUGAR", day(1), "50", "0", "10", "40"),
		movement("FLOUR", day(1), "90", "0", "10", "80"),
		movement("FLOUR", day(0), "100", "0", "10", "90"),
	}

	entries, err := BuildLedger(movements)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "FLOUR", entries[0].RawMaterial)
	assert.Equal(t, day(0), entries[0].Date)
	assert.Equal(t, "FLOUR", entries[1].RawMaterial)
	assert.Equal(t, "SUGAR", entries[2].RawMaterial)
}
