package view

import (
	"sort"
	"time"

	"github.com/ishiasaka/labshop/internal/upstream"
)

const (
	ActivityPurchase = "PURCHASE"
	ActivityPayment  = "PAYMENT"
)

// ActivityEvent is synthesized client-side by merging the purchase and
// payment feeds; it is never persisted.
type ActivityEvent struct {
	Time      time.Time
	StudentID int
	Kind      string
	Amount    int
}

// MergeActivity combines both feeds sorted by time descending. The sort
// is stable, so simultaneous events keep purchases ahead of payments.
func MergeActivity(purchases []upstream.Purchase, payments []upstream.Payment) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(purchases)+len(payments))
	for _, p := range purchases {
		events = append(events, ActivityEvent{
			Time:      p.CreatedAt,
			StudentID: p.StudentID,
			Kind:      ActivityPurchase,
			Amount:    p.Price,
		})
	}
	for _, p := range payments {
		events = append(events, ActivityEvent{
			Time:      p.CreatedAt,
			StudentID: p.StudentID,
			Kind:      ActivityPayment,
			Amount:    p.AmountPaid,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time)
	})
	return events
}
