package usecase

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// lot is a remembered chunk of purchased stock awaiting consumption.
type lot struct {
	unitCost  decimal.Decimal
	remaining decimal.Decimal
}

// lotQueue consumes purchase lots in arrival order.
type lotQueue struct {
	lots []lot
}

func (q *lotQueue) push(unitCost, quantity decimal.Decimal) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return
	}
	q.lots = append(q.lots, lot{unitCost: unitCost, remaining: quantity})
}

func (q *lotQueue) clear() {
	q.lots = q.lots[:0]
}

// take consumes up to quantity from the front of the queue and returns the
// quantity actually consumed plus its accumulated cost.
func (q *lotQueue) take(quantity decimal.Decimal) (consumed, cost decimal.Decimal) {
	consumed, cost = decimal.Zero, decimal.Zero

	for len(q.lots) > 0 && consumed.LessThan(quantity) {
		front := &q.lots[0]
		need := quantity.Sub(consumed)

		take := front.remaining
		if take.GreaterThan(need) {
			take = need
		}

		consumed = consumed.Add(take)
		cost = cost.Add(take.Mul(front.unitCost))
		front.remaining = front.remaining.Sub(take)

		if front.remaining.LessThanOrEqual(decimal.Zero) {
			q.lots = q.lots[1:]
		}
	}

	return consumed, cost
}

// replayProfit runs the FIFO attribution over an ordered slice of stock
// entries and aggregates realized profit for sales inside [start, end).
//
// The slice must begin at a clean point (a reset entry or the partition's
// first entry) and extend past end so that borrowing can reach purchases
// recorded after the window.
func replayProfit(entries []*domain.LedgerEntry, start, end time.Time) domain.ProfitReport {
	report := domain.ProfitReport{
		Start:             start,
		End:               end,
		TotalProfit:       decimal.Zero,
		TotalSalesValue:   decimal.Zero,
		TotalUnitsSold:    decimal.Zero,
		TotalCost:         decimal.Zero,
		AvgCostPerUnit:    decimal.Zero,
		CostBasisComplete: true,
	}
	if len(entries) > 0 {
		report.StoreID = entries[0].StoreID
		report.ProductID = entries[0].ProductID
	}

	// Quantity still available on each purchase-like entry. Borrowing
	// consumes from here before the replay reaches the entry, so the lot
	// pushed later is already depleted.
	available := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		if e.IsPurchaseLike() {
			available[i] = e.Amount
		}
	}

	queue := &lotQueue{}
	daily := map[string]*domain.DailyProfit{}
	lastCost := decimal.Zero
	costSeen := false

	for i, e := range entries {
		switch {
		case e.Kind == domain.KindReset:
			// Counted inventory; everything before it is no longer a
			// valid cost source.
			queue.clear()
			queue.push(e.UnitPrice, available[i])
			if e.Amount.IsPositive() {
				lastCost = e.UnitPrice
				costSeen = true
			}

		case e.IsPurchaseLike():
			queue.push(e.UnitPrice, available[i])
			lastCost = e.UnitPrice
			costSeen = true

		case e.IsSaleLike():
			quantity := e.Amount.Neg()
			consumed, cost := queue.take(quantity)

			if consumed.LessThan(quantity) {
				borrowed, borrowedCost := borrowAhead(entries, available, i+1, quantity.Sub(consumed))
				consumed = consumed.Add(borrowed)
				cost = cost.Add(borrowedCost)
			}

			if consumed.LessThan(quantity) {
				short := quantity.Sub(consumed)
				fallback, ok := fallbackCost(entries, i, lastCost, costSeen)
				if !ok {
					// No cost basis has ever been observed: value the
					// shortfall at sale price so it contributes zero profit.
					fallback = e.UnitPrice
					report.CostBasisComplete = false
				}
				cost = cost.Add(short.Mul(fallback))
			}

			if e.OccurredAt.Before(start) || !e.OccurredAt.Before(end) {
				// Outside the window the sale only depletes the queue.
				continue
			}

			saleValue := quantity.Mul(e.UnitPrice)
			profit := saleValue.Sub(cost)

			report.TotalProfit = report.TotalProfit.Add(profit)
			report.TotalSalesValue = report.TotalSalesValue.Add(saleValue)
			report.TotalUnitsSold = report.TotalUnitsSold.Add(quantity)
			report.TotalCost = report.TotalCost.Add(cost)

			day := e.OccurredAt.UTC().Format("2006-01-02")
			bucket, ok := daily[day]
			if !ok {
				bucket = &domain.DailyProfit{
					Day:        day,
					Profit:     decimal.Zero,
					SalesValue: decimal.Zero,
					UnitsSold:  decimal.Zero,
				}
				daily[day] = bucket
			}
			bucket.Profit = bucket.Profit.Add(profit)
			bucket.SalesValue = bucket.SalesValue.Add(saleValue)
			bucket.UnitsSold = bucket.UnitsSold.Add(quantity)
		}
	}

	if report.TotalUnitsSold.IsPositive() {
		report.AvgCostPerUnit = report.TotalCost.Div(report.TotalUnitsSold)
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		report.Daily = append(report.Daily, *daily[day])
	}

	return report
}

// borrowAhead consumes quantity from purchases later in the replay, nearest
// first. Stock sold now was physically replenished later; its eventual cost
// is the best available approximation. The scan is unbounded so purchases
// after the report window qualify too.
func borrowAhead(entries []*domain.LedgerEntry, available []decimal.Decimal, from int, quantity decimal.Decimal) (borrowed, cost decimal.Decimal) {
	borrowed, cost = decimal.Zero, decimal.Zero

	for i := from; i < len(entries) && borrowed.LessThan(quantity); i++ {
		if !entries[i].IsPurchaseLike() || !available[i].IsPositive() {
			continue
		}

		take := available[i]
		need := quantity.Sub(borrowed)
		if take.GreaterThan(need) {
			take = need
		}

		borrowed = borrowed.Add(take)
		cost = cost.Add(take.Mul(entries[i].UnitPrice))
		available[i] = available[i].Sub(take)
	}

	return borrowed, cost
}

// fallbackCost returns the unit cost used when no lot quantity is left
// anywhere in the replay: the last cost seen so far, or failing that the
// cost of the first purchase anywhere ahead (its quantity may have been
// fully pre-borrowed, but its cost is still known).
func fallbackCost(entries []*domain.LedgerEntry, at int, lastCost decimal.Decimal, costSeen bool) (decimal.Decimal, bool) {
	if costSeen {
		return lastCost, true
	}

	for i := at + 1; i < len(entries); i++ {
		if entries[i].IsPurchaseLike() {
			return entries[i].UnitPrice, true
		}
	}

	return decimal.Zero, false
}
