// Package inventory validates the raw material ledger and reconciles it
// against forecast demand.
package inventory

import (
	"errors"
	"sort"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

var ErrEmptyMovements = errors.New("inventory: movement table is empty")

// BuildLedger orders movements chronologically per raw material, recomputes
// the closing balance as opening + inflow - consumed, and marks each row with
// whether the stored closing inventory agrees with the recomputed value.
// Mismatches are flagged, never corrected; the stored balance stays
// authoritative downstream.
func BuildLedger(movements []domain.InventoryMovement) ([]domain.LedgerEntry, error) {
	log := logger.Stage("inventory_ledger")

	if len(movements) == 0 {
		return nil, ErrEmptyMovements
	}

	sorted := make([]domain.InventoryMovement, len(movements))
	copy(sorted, movements)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.RawMaterial != b.RawMaterial {
			return a.RawMaterial < b.RawMaterial
		}
		return a.Date.Before(b.Date)
	})

	mismatches := 0
	entries := make([]domain.LedgerEntry, 0, len(sorted))
	for _, m := range sorted {
		calculated := m.OpeningInventory.Add(m.InflowQuantity).Sub(m.ConsumedQuantity)
		valid := m.ClosingInventory.Equal(calculated)
		if !valid {
			mismatches++
			log.Warn().
				Str("raw_material", m.RawMaterial).
				Str("date", m.Date.Format("2006-01-02")).
				Str("closing_inventory", m.ClosingInventory.String()).
				Str("calculated_closing_inventory", calculated.String()).
				Msg("stored closing inventory disagrees with recomputed balance")
		}
		entries = append(entries, domain.LedgerEntry{
			InventoryMovement:          m,
			CalculatedClosingInventory: calculated,
			ValidationStatus:           valid,
		})
	}

	log.Info().
		Int("rows", len(entries)).
		Int("mismatches", mismatches).
		Msg("validated inventory ledger")

	return entries, nil
}
