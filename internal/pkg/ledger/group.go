package ledger

import (
	"sort"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// AnnotatedTransaction is a ledger row plus the derived duplicate/primary
// classification. The flags exist only in responses and are never persisted;
// reclassification happens on every read so a metadata fix immediately
// changes the outcome.
type AnnotatedTransaction struct {
	models.PaymentTransaction
	IsPrimary     bool   `json:"is_primary"`
	IsDuplicate   bool   `json:"is_duplicate"`
	DisplayAmount string `json:"display_amount"`
}

// GroupAndMarkPrimary resolves gateway-side duplicate bookings to one
// canonical row per gateway transaction id.
//
// Rows without a gateway transaction id pass through unmarked. Singleton
// groups carry no flags either; they are implicitly primary. For larger
// groups the row whose booked currency matches its expected currency wins,
// otherwise the largest positive amount, otherwise the first zero-amount
// row. Input is sorted by row id first so the outcome is deterministic;
// the output is grouped then flattened and does not preserve input order.
func GroupAndMarkPrimary(transactions []models.PaymentTransaction) []AnnotatedTransaction {
	sorted := make([]models.PaymentTransaction, len(transactions))
	copy(sorted, transactions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var order []string
	groups := make(map[string][]models.PaymentTransaction)
	var ungrouped []models.PaymentTransaction

	for _, tx := range sorted {
		key := tx.GatewayTransactionID
		if key == "" {
			ungrouped = append(ungrouped, tx)
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tx)
	}

	out := make([]AnnotatedTransaction, 0, len(sorted))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, annotate(group[0], false, false))
			continue
		}

		primary := pickPrimary(group)
		for i, tx := range group {
			out = append(out, annotate(tx, i == primary, i != primary))
		}
	}
	for _, tx := range ungrouped {
		out = append(out, annotate(tx, false, false))
	}
	return out
}

// pickPrimary returns the index of the canonical row within a duplicate
// group. An exact expected-currency match wins outright; the fallback keeps
// the largest positive amount on the theory that zero-amount rows are
// authorization placeholders. All-zero groups keep the first row, which is
// an observed-behavior tiebreak rather than a business rule.
func pickPrimary(group []models.PaymentTransaction) int {
	for i, tx := range group {
		if tx.CurrencyMatchesExpected() {
			return i
		}
	}

	best := -1
	for i, tx := range group {
		if !tx.Amount.IsPositive() {
			continue
		}
		if best == -1 || tx.Amount.GreaterThan(group[best].Amount) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	return 0
}

func annotate(tx models.PaymentTransaction, primary, duplicate bool) AnnotatedTransaction {
	return AnnotatedTransaction{
		PaymentTransaction: tx,
		IsPrimary:          primary,
		IsDuplicate:        duplicate,
		DisplayAmount:      FormatAmount(tx.Amount, tx.Currency),
	}
}
