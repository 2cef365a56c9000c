/*
Package billing provides the fee-cycle reconciliation core.

PURPOSE:
  This package contains the pure calculation layer for a monthly-fee
  business: calendar cycle arithmetic anchored to an admission day,
  a fee-change history resolver, and the projection engine that turns
  a student's payment history into a financial snapshot (dues, paid-through
  date, overpayment, delinquency window).

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A single-currency amount backed by decimal.Decimal

DESIGN PRINCIPLES:
  1. Purity: Compute() is a deterministic function of its inputs plus "now";
     nothing here mutates stored state or caches a running balance
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Single walk: Both projection passes consume the same cycle iterator,
     so the cycle-boundary and fee-resolution rules cannot drift apart

USAGE:
  snap := billing.Compute(account, billing.Today())
  if snap.TotalDues.IsPositive() {
      // student owes money since snap.DueSince
  }

SEE ALSO:
  - calendar.go: Cycle boundary arithmetic with short-month clamping
  - schedule.go: Which fee applies to which cycle
  - projection.go: The two-pass financial snapshot
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Single-currency amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func MoneyFromFloat(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

// ParseMoney parses a decimal string.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MustParseMoney parses a decimal string, returning zero on failure.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                  { return Money{Value: m.Value.Abs()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }
func (m Money) LessThan(o Money) bool       { return m.Value.LessThan(o.Value) }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) GreaterOrEqual(o Money) bool { return m.Value.GreaterThanOrEqual(o.Value) }

func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

func (m Money) String() string { return m.Value.String() }
