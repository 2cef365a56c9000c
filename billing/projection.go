/*
projection.go - Financial snapshot from payment history

PURPOSE:
  The core of the system. Given a student's admission date, fee history,
  and payment list, derive: how many cycles are fully paid, the date the
  student is paid through, outstanding dues, overpayment, and the
  delinquency window (due-since date, days overdue).

ALGORITHM (two passes over billing cycles from the admission date):

  Pass 1 - paid-through projection, UNBOUNDED by the current date:
    credited = sum(amount + discount) over all payments.
    Consume cycle fees while credited covers them, advancing PaidUntil to
    each cycle's paid-through date. Payments for several months in advance
    legitimately push PaidUntil into the future.

  Pass 2 - expected dues, BOUNDED by the horizon:
    The horizon is the earlier of "now" and the deactivation date, so
    deactivation freezes the billing clock without erasing history.
    Sum the fee of every cycle starting on or before the horizon,
    independent of payments.

  TotalDues = expected - credited, clamped at zero; the negative magnitude
  is Overpaid. When dues exist, DueSince is the day after PaidUntil; if
  that lands past the horizon the two passes have crossed (different
  stopping conditions) and there are in fact no dues within the horizon.

  Both passes consume the same cycle iterator, so boundary clamping and
  fee resolution cannot drift between them.

PRECONDITIONS:
  An inactive student, a missing admission date, or a non-positive monthly
  fee yields the zero snapshot - never an error. The fee guard also stops
  pass 1 if a fee CHANGE drops the cycle fee to zero or below, since any
  credit would cover such a cycle forever. A deactivation date alone never
  zeroes the snapshot; only the active flag does.

  Callers own payment hygiene (positive amounts, non-negative discounts).
  The engine only sums what it is given.

SEE ALSO:
  - calendar.go: NextCycleBoundary and the short-month clamp
  - schedule.go: Fee resolution per cycle
*/
package billing

// =============================================================================
// INPUT SNAPSHOT
// =============================================================================

// Payment is the projection engine's view of one payment: the net amount
// received plus the discount forgiven. Their sum is the portion of cycle
// cost the payment satisfies.
type Payment struct {
	Amount   Money `json:"amount"`
	Discount Money `json:"discount"`
	PaidOn   Date  `json:"date"`
}

// Account is an immutable snapshot of everything the projection needs.
// The entity layer assembles it; the engine never reads stored state.
type Account struct {
	AdmissionDate Date
	MonthlyFee    Money
	FeeChanges    []FeeChange
	Payments      []Payment
	Active        bool
	DeactivatedAt *Date
}

// =============================================================================
// OUTPUT SNAPSHOT
// =============================================================================

// Snapshot is the derived financial state. It is recomputed on every
// read; no running balance is ever persisted.
type Snapshot struct {
	TotalDues  Money
	PaidUntil  *Date
	AmountPaid Money
	Overpaid   Money
	DueSince   *Date
	DaysDue    int
	PaidMonths int
}

func zeroSnapshot() Snapshot {
	return Snapshot{
		TotalDues:  NewMoney(0),
		AmountPaid: NewMoney(0),
		Overpaid:   NewMoney(0),
	}
}

// =============================================================================
// CYCLE ITERATOR - Shared by both passes
// =============================================================================

// Cycle is one billing month anchored to the admission day-of-month.
type Cycle struct {
	Start       Date
	NextStart   Date
	PaidThrough Date // inclusive last covered day
	Clamped     bool
	Fee         Money
}

type cycleIterator struct {
	anchorDay int
	current   Date
	fees      *feeSchedule
}

func newCycleIterator(admissionOn Date, admissionFee Money, changes []FeeChange) *cycleIterator {
	return &cycleIterator{
		anchorDay: admissionOn.Day(),
		current:   admissionOn,
		fees:      newFeeSchedule(admissionOn, admissionFee, changes),
	}
}

// next returns the cycle beginning at the iterator position and advances.
func (it *cycleIterator) next() Cycle {
	nextStart, clamped := NextCycleBoundary(it.current, it.anchorDay)
	paidThrough := nextStart
	if !clamped {
		paidThrough = nextStart.AddDays(-1)
	}
	c := Cycle{
		Start:       it.current,
		NextStart:   nextStart,
		PaidThrough: paidThrough,
		Clamped:     clamped,
		Fee:         it.fees.feeFor(nextStart),
	}
	it.current = nextStart
	return c
}

// =============================================================================
// PROJECTION
// =============================================================================

// Compute derives the financial snapshot for an account as of "now".
// Pure: identical inputs and now yield identical output.
func Compute(acct Account, now Date) Snapshot {
	if !acct.Active || acct.AdmissionDate.IsZero() || !acct.MonthlyFee.IsPositive() {
		return zeroSnapshot()
	}

	horizon := now
	if acct.DeactivatedAt != nil && acct.DeactivatedAt.Before(now) {
		horizon = *acct.DeactivatedAt
	}

	credited := NewMoney(0)
	for _, p := range acct.Payments {
		credited = credited.Add(p.Amount).Add(p.Discount)
	}

	// Pass 1: project payments forward, unbounded by the horizon.
	// With nothing paid, the student is paid through the day before
	// admission: cycle one starts at admission and is not yet covered.
	paidUntil := acct.AdmissionDate.AddDays(-1)
	paidMonths := 0
	remaining := credited
	cycles := newCycleIterator(acct.AdmissionDate, acct.MonthlyFee, acct.FeeChanges)
	for {
		c := cycles.next()
		if !c.Fee.IsPositive() || remaining.LessThan(c.Fee) {
			break
		}
		remaining = remaining.Sub(c.Fee)
		paidUntil = c.PaidThrough
		paidMonths++
	}

	// Pass 2: expected fees for every cycle starting within the horizon,
	// independent of payments.
	expected := NewMoney(0)
	cycles = newCycleIterator(acct.AdmissionDate, acct.MonthlyFee, acct.FeeChanges)
	for {
		c := cycles.next()
		if c.Start.After(horizon) {
			break
		}
		expected = expected.Add(c.Fee)
	}

	totalDues := expected.Sub(credited)
	overpaid := NewMoney(0)
	if totalDues.IsNegative() {
		overpaid = totalDues.Neg()
		totalDues = NewMoney(0)
	}

	var dueSince *Date
	daysDue := 0
	if totalDues.IsPositive() {
		since := paidUntil.AddDays(1)
		if since.After(horizon) {
			// Paid-through already crossed the horizon: nothing is due yet.
			totalDues = NewMoney(0)
		} else {
			dueSince = &since
			daysDue = DaysBetween(since, horizon) + 1
		}
	}

	pu := paidUntil
	return Snapshot{
		TotalDues:  totalDues,
		PaidUntil:  &pu,
		AmountPaid: credited,
		Overpaid:   overpaid,
		DueSince:   dueSince,
		DaysDue:    daysDue,
		PaidMonths: paidMonths,
	}
}
