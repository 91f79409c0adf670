package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"

	"github.com/shopspring/decimal"
)

// LineKind classifies statement lines
type LineKind string

const (
	KindOpening LineKind = "opening"
	KindInvoice LineKind = "invoice"
	KindPayment LineKind = "payment"
	KindDebit   LineKind = "debit"
	KindCredit  LineKind = "credit"
)

// Epoch dates the opening line of an unbounded statement
var Epoch = time.Unix(0, 0).UTC()

// Range bounds a statement. Zero values are unbounded.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r Range) before(t time.Time) bool { return !r.From.IsZero() && t.Before(r.From) }
func (r Range) after(t time.Time) bool  { return !r.To.IsZero() && t.After(r.To) }

// Line is one row of a statement
type Line struct {
	Date          time.Time          `json:"date"`
	Kind          LineKind           `json:"kind"`
	Description   string             `json:"description"`
	Reference     database.Reference `json:"reference"`
	Debit         decimal.Decimal    `json:"debit"`
	Credit        decimal.Decimal    `json:"credit"`
	Balance       decimal.Decimal    `json:"balance"`
	TransactionID uint               `json:"transactionId,omitempty"`
	// Derived lines come from order records without a matching ledger row
	Derived bool `json:"derived,omitempty"`
}

// Summary totals a statement
type Summary struct {
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	TotalDebits       decimal.Decimal `json:"totalDebits"`
	TotalCredits      decimal.Decimal `json:"totalCredits"`
	ClosingBalance    decimal.Decimal `json:"closingBalance"`
	OutstandingOrders decimal.Decimal `json:"outstandingOrders"`
	InvoiceCount      int             `json:"invoiceCount"`
}

// Statement is a dealer's reconstructed ledger over a range
type Statement struct {
	DealerID uint    `json:"dealerId"`
	Range    Range   `json:"range"`
	Lines    []Line  `json:"lines"`
	Summary  Summary `json:"summary"`
}

// StatementInput is everything BuildStatement reads
type StatementInput struct {
	Dealer       *database.Dealer
	Transactions []*database.DealerTransaction
	Orders       []*database.Order
	Range        Range
}

type event struct {
	line  Line
	rank  int
	order uint
}

// BuildStatement replays the opening balance and every event in date order.
// Events before the range are folded into the opening line, events after it
// are ignored. The running balance is recomputed, never copied from stored
// snapshots, and the output depends only on the input.
func BuildStatement(in StatementInput) Statement {
	d := in.Dealer
	events := transactionEvents(in.Transactions)
	events = append(events, derivedEvents(in.Orders, in.Transactions)...)
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.line.Date.Equal(b.line.Date) {
			return a.line.Date.Before(b.line.Date)
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.order < b.order
	})

	opening := SignedOpening(d.FinancialInfo.OpeningBalance, d.FinancialInfo.OpeningBalanceType)
	var inRange []Line
	for _, ev := range events {
		switch {
		case in.Range.before(ev.line.Date):
			opening = opening.Add(ev.line.Debit).Sub(ev.line.Credit)
		case in.Range.after(ev.line.Date):
		default:
			inRange = append(inRange, ev.line)
		}
	}

	openingDate := Epoch
	if !in.Range.From.IsZero() {
		openingDate = in.Range.From
	}
	lines := make([]Line, 0, len(inRange)+1)
	lines = append(lines, Line{
		Date:        openingDate,
		Kind:        KindOpening,
		Description: "Opening balance",
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Balance:     opening,
	})

	sum := Summary{
		OpeningBalance:    opening,
		TotalDebits:       decimal.Zero,
		TotalCredits:      decimal.Zero,
		OutstandingOrders: decimal.Zero,
	}
	running := opening
	for _, l := range inRange {
		running = running.Add(l.Debit).Sub(l.Credit)
		l.Balance = running
		sum.TotalDebits = sum.TotalDebits.Add(l.Debit)
		sum.TotalCredits = sum.TotalCredits.Add(l.Credit)
		if l.Kind == KindInvoice {
			sum.InvoiceCount++
		}
		lines = append(lines, l)
	}
	sum.ClosingBalance = running

	for _, o := range in.Orders {
		if in.Range.after(o.OrderDate) {
			continue
		}
		sum.OutstandingOrders = sum.OutstandingOrders.Add(o.Outstanding())
	}

	return Statement{DealerID: d.ID, Range: in.Range, Lines: lines, Summary: sum}
}

func transactionEvents(txs []*database.DealerTransaction) []event {
	events := make([]event, 0, len(txs))
	for _, tx := range txs {
		l := Line{
			Date:          tx.Date,
			Kind:          kindOf(tx),
			Description:   tx.Description,
			Reference:     tx.Reference,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
			TransactionID: tx.ID,
		}
		if tx.Type == database.BalanceCredit {
			l.Credit = tx.Amount
		} else {
			l.Debit = tx.Amount
		}
		events = append(events, event{line: l, rank: 0, order: tx.ID})
	}
	return events
}

func kindOf(tx *database.DealerTransaction) LineKind {
	switch {
	case tx.Type == database.BalanceDebit && tx.Reference.Type == database.RefOrder:
		return KindInvoice
	case tx.Type == database.BalanceCredit && (tx.Reference.Type == database.RefOrder || tx.Reference.Type == database.RefPayment):
		return KindPayment
	case tx.Type == database.BalanceCredit:
		return KindCredit
	default:
		return KindDebit
	}
}

// derivedEvents adds the invoice and payment lines an order implies but the
// log does not already record. Logged amounts referencing the order are
// subtracted so collections are never counted twice.
func derivedEvents(orders []*database.Order, txs []*database.DealerTransaction) []event {
	logged := map[string]map[database.BalanceType]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Reference.Type != database.RefOrder {
			continue
		}
		byType, ok := logged[tx.Reference.ID]
		if !ok {
			byType = map[database.BalanceType]decimal.Decimal{}
			logged[tx.Reference.ID] = byType
		}
		byType[tx.Type] = byType[tx.Type].Add(tx.Amount)
	}

	var events []event
	for _, o := range orders {
		if o.Status == database.OrderCancelled {
			continue
		}
		ref := database.Reference{Type: database.RefOrder, ID: strconv.FormatUint(uint64(o.ID), 10)}
		byType := logged[ref.ID]

		if invoiced := o.TotalAmount.Sub(byType[database.BalanceDebit]); invoiced.IsPositive() {
			events = append(events, event{rank: 1, order: o.ID, line: Line{
				Date:        o.OrderDate,
				Kind:        KindInvoice,
				Description: fmt.Sprintf("Invoice %s", o.OrderNumber),
				Reference:   ref,
				Debit:       invoiced,
				Credit:      decimal.Zero,
				Derived:     true,
			}})
		}

		if paid := o.PaidAmount.Sub(byType[database.BalanceCredit]); paid.IsPositive() {
			date := o.UpdatedAt
			if date.IsZero() || date.Before(o.OrderDate) {
				date = o.OrderDate
			}
			events = append(events, event{rank: 2, order: o.ID, line: Line{
				Date:        date,
				Kind:        KindPayment,
				Description: fmt.Sprintf("Payment against %s", o.OrderNumber),
				Reference:   ref,
				Debit:       decimal.Zero,
				Credit:      paid,
				Derived:     true,
			}})
		}
	}
	return events
}
