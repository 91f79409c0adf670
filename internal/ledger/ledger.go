// Package ledger keeps dealer balances consistent with their transaction log.
//
// A dealer's current balance always equals its signed opening balance plus
// the signed sum of its ledger rows. Debits increase what the dealer owes,
// credits reduce it.
package ledger

import (
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"

	"github.com/shopspring/decimal"
)

// Signed returns amount with the sign its type carries on the balance
func Signed(typ database.BalanceType, amount decimal.Decimal) decimal.Decimal {
	if typ == database.BalanceCredit {
		return amount.Neg()
	}
	return amount
}

// SignedOpening is the contribution of an opening balance to the running total
func SignedOpening(amount decimal.Decimal, typ database.BalanceType) decimal.Decimal {
	return Signed(typ, amount)
}

// OpeningEditDelta is the shift an opening balance edit applies to the
// current balance. changed is false when amount and type are both unchanged.
func OpeningEditDelta(oldAmount decimal.Decimal, oldType database.BalanceType, newAmount decimal.Decimal, newType database.BalanceType) (delta decimal.Decimal, changed bool) {
	if oldAmount.Equal(newAmount) && oldType == newType {
		return decimal.Zero, false
	}
	return SignedOpening(newAmount, newType).Sub(SignedOpening(oldAmount, oldType)), true
}

// Entry is one balance mutation requested by a caller
type Entry struct {
	Type        database.BalanceType
	Amount      decimal.Decimal
	Description string
	Reference   database.Reference
	// Date defaults to now
	Date      time.Time
	CreatedBy uint
}

// Validate checks the amount is positive and the type is credit or debit
func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return cnst.ErrInvalidBalanceType
	}
	if !e.Amount.IsPositive() {
		return cnst.ErrNonPositiveAmount
	}
	return nil
}
