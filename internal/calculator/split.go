package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/receipt"
)

// Input carries the strategy-specific part of an allocation request.
// Only the field matching the method is read.
type Input struct {
	// Percentages maps participant ID to a user-entered percentage (percentage method).
	Percentages map[string]decimal.Decimal

	// Amounts maps participant ID to a user-entered amount (custom method).
	Amounts map[string]decimal.Decimal

	// Items is the receipt for the itemized method.
	Items []models.ReceiptItem
}

// Allocate computes the shares for total under method.
// Returned shares follow the participant order and start in pending status.
func Allocate(method models.SplitMethod, total decimal.Decimal, participants []string, in Input) ([]models.Share, error) {
	switch method {
	case models.MethodEqual:
		return Equal(total, participants)
	case models.MethodPercentage:
		return Percentage(total, participants, in.Percentages)
	case models.MethodCustom:
		return Custom(total, participants, in.Amounts)
	case models.MethodItemized:
		return Itemized(total, participants, in.Items)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// Equal divides total evenly. Leftover cents go one each to the first
// participants so that amounts always sum to total exactly; percentages are
// distributed the same way over 100.
func Equal(total decimal.Decimal, participants []string) ([]models.Share, error) {
	if err := checkPreconditions(total, participants); err != nil {
		return nil, err
	}

	amounts := money.Distribute(total, len(participants))
	percentages := money.Distribute(money.Hundred, len(participants))

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		shares[i] = models.Share{
			ParticipantID: p,
			Amount:        amounts[i],
			Percentage:    percentages[i],
			Status:        models.StatusPending,
		}
	}
	return shares, nil
}

// Percentage derives each amount from a user-entered percentage.
// A participant missing from percentages gets 0%.
//
// When the percentages add up to 100 (within a cent), amounts are apportioned
// with largest-remainder rounding so they sum to total exactly. Otherwise each
// amount is rounded on its own and the allocation stays visibly incomplete.
func Percentage(total decimal.Decimal, participants []string, percentages map[string]decimal.Decimal) ([]models.Share, error) {
	if err := checkPreconditions(total, participants); err != nil {
		return nil, err
	}

	pcts := make([]decimal.Decimal, len(participants))
	raw := make([]decimal.Decimal, len(participants))
	for i, p := range participants {
		pcts[i] = percentages[p]
		if err := CheckPercentage(pcts[i]); err != nil {
			return nil, fmt.Errorf("%w: %q", err, p)
		}
		raw[i] = pcts[i].Div(money.Hundred).Mul(total)
	}

	var amounts []decimal.Decimal
	if money.WithinEpsilon(money.Sum(pcts...), money.Hundred) {
		amounts = apportion(total, raw)
	}
	if amounts == nil {
		amounts = make([]decimal.Decimal, len(raw))
		for i, r := range raw {
			amounts[i] = money.Round(r)
		}
	}

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		shares[i] = models.Share{
			ParticipantID: p,
			Amount:        amounts[i],
			Percentage:    pcts[i],
			Status:        models.StatusPending,
		}
	}
	return shares, nil
}

// Custom takes user-entered amounts as-is (rounded to cents) and derives the
// informational percentage. A participant missing from amounts owes 0.
func Custom(total decimal.Decimal, participants []string, amounts map[string]decimal.Decimal) ([]models.Share, error) {
	if err := checkPreconditions(total, participants); err != nil {
		return nil, err
	}

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		amount := money.Round(amounts[p])
		if err := CheckAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: %q", err, p)
		}
		shares[i] = models.Share{
			ParticipantID: p,
			Amount:        amount,
			Percentage:    money.Percent(amount, total),
			Status:        models.StatusPending,
		}
	}
	return shares, nil
}

// Itemized sums each participant's portion of the receipt items assigned to
// them. Every item's line total is divided evenly across its assignees, with
// leftover cents going to assignees earlier in the participant order.
// Discount items (negative prices) flow through the same division.
//
// All items must be assigned; an unassigned item fails with ErrUnassignedItem
// rather than silently dropping out of the totals.
func Itemized(total decimal.Decimal, participants []string, items []models.ReceiptItem) ([]models.Share, error) {
	if err := checkPreconditions(total, participants); err != nil {
		return nil, err
	}
	if unassigned := receipt.Unassigned(items); len(unassigned) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnassignedItem, unassigned[0].Name)
	}

	order := make(map[string]int, len(participants))
	for i, p := range participants {
		order[p] = i
	}

	totals := make([]decimal.Decimal, len(participants))
	for i := range totals {
		totals[i] = decimal.Zero
	}

	for _, item := range items {
		assignees := make([]int, 0, len(item.AssignedTo))
		seen := make(map[int]bool, len(item.AssignedTo))
		for _, id := range item.AssignedTo {
			idx, ok := order[id]
			if !ok {
				return nil, fmt.Errorf("%w: %q on item %q", ErrUnknownAssignee, id, item.Name)
			}
			if seen[idx] {
				continue
			}
			seen[idx] = true
			assignees = append(assignees, idx)
		}
		sort.Ints(assignees)

		parts := money.Distribute(item.LineTotal(), len(assignees))
		for j, idx := range assignees {
			totals[idx] = totals[idx].Add(parts[j])
		}
	}

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		shares[i] = models.Share{
			ParticipantID: p,
			Amount:        totals[i],
			Percentage:    money.Percent(totals[i], total),
			Status:        models.StatusPending,
		}
	}
	return shares, nil
}

// CheckPercentage rejects an entered percentage outside [0, 100].
func CheckPercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(money.Hundred) {
		return fmt.Errorf("%w, got %s", ErrPercentageOutOfRange, p)
	}
	return nil
}

// CheckAmount rejects a negative custom amount.
func CheckAmount(a decimal.Decimal) error {
	if a.IsNegative() {
		return fmt.Errorf("%w, got %s", ErrNegativeAmount, a)
	}
	return nil
}

// checkPreconditions rejects allocations that are caller bugs rather than
// incomplete user input.
func checkPreconditions(total decimal.Decimal, participants []string) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return fmt.Errorf("%w: %s", ErrNonPositiveTotal, total)
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateParticipant, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// apportion rounds raw amounts to cents so they sum to total exactly, handing
// leftover cents to the largest fractional remainders (ties by position).
// It returns nil when the raw amounts are too far from total to fix by
// moving less than one cent per share.
func apportion(total decimal.Decimal, raw []decimal.Decimal) []decimal.Decimal {
	type rem struct {
		idx  int
		frac decimal.Decimal
	}

	floors := make([]int64, len(raw))
	rems := make([]rem, len(raw))
	var sum int64
	for i, r := range raw {
		c := r.Shift(money.Places)
		f := c.Floor()
		floors[i] = f.IntPart()
		rems[i] = rem{idx: i, frac: c.Sub(f)}
		sum += floors[i]
	}

	left := money.Cents(total) - sum
	if left < 0 || left > int64(len(raw)) {
		return nil
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac.GreaterThan(rems[b].frac)
	})
	for k := int64(0); k < left; k++ {
		floors[rems[k].idx]++
	}

	out := make([]decimal.Decimal, len(raw))
	for i, c := range floors {
		out[i] = money.FromCents(c)
	}
	return out
}
