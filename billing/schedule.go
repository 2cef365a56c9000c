/*
schedule.go - Fee history resolution

PURPOSE:
  Determines which monthly fee applies to which billing cycle. A student's
  fee can change over time; each change is an append-only {date, fee}
  record. The schedule always begins with a synthetic entry at the
  admission date carrying the original admission fee.

RESOLUTION RULE:
  For the cycle ending at boundary E, advance through the sorted entries
  while the NEXT entry takes effect strictly before E. The fee in effect
  is the entry the index rests on. A change landing mid-cycle therefore
  applies from the cycle whose end boundary it precedes - it never splits
  or retroactively reprices a cycle.

  The index only moves forward. One schedule instance serves exactly one
  walk over the cycles; each projection pass builds its own.

SEE ALSO:
  - projection.go: Consumes the schedule through the cycle iterator
*/
package billing

import "sort"

// FeeChange records a fee amount taking effect on a date.
type FeeChange struct {
	EffectiveOn Date  `json:"date"`
	Fee         Money `json:"fee"`
}

// feeSchedule resolves the fee for successive cycle boundaries.
// The entries are sorted once; the cursor advances monotonically.
type feeSchedule struct {
	entries []FeeChange
	idx     int
}

// newFeeSchedule builds the schedule from the admission fee plus the
// change log. Input order does not matter; the schedule sorts (stably)
// by effective date.
func newFeeSchedule(admissionOn Date, admissionFee Money, changes []FeeChange) *feeSchedule {
	entries := make([]FeeChange, 0, len(changes)+1)
	entries = append(entries, FeeChange{EffectiveOn: admissionOn, Fee: admissionFee})
	entries = append(entries, changes...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EffectiveOn.Before(entries[j].EffectiveOn)
	})
	return &feeSchedule{entries: entries}
}

// feeFor returns the fee in effect for the cycle whose end boundary is
// cycleEnd. Must be called with non-decreasing boundaries.
func (fs *feeSchedule) feeFor(cycleEnd Date) Money {
	for fs.idx < len(fs.entries)-1 && fs.entries[fs.idx+1].EffectiveOn.Before(cycleEnd) {
		fs.idx++
	}
	return fs.entries[fs.idx].Fee
}
