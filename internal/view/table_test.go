package view

import (
	"fmt"
	"testing"
	"time"

	"github.com/ishiasaka/labshop/internal/upstream"
)

func makeUsers(n int) []upstream.User {
	users := make([]upstream.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, upstream.User{
			StudentID: i,
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
			Status:    "active",
		})
	}
	return users
}

func checkClamp[T any](t *testing.T, table *Table[T]) {
	t.Helper()
	if table.Page() < 1 || table.Page() > table.PageCount() {
		t.Fatalf("page %d out of range [1, %d]", table.Page(), table.PageCount())
	}
}

func TestPageClampInvariant(t *testing.T) {
	table := NewUsersTable(10)
	table.SetRows(makeUsers(35))

	if got := table.PageCount(); got != 4 {
		t.Fatalf("expected 4 pages, got %d", got)
	}

	// Walk past the end; Next must stop at the last page.
	for i := 0; i < 10; i++ {
		table.Next()
		checkClamp(t, table)
	}
	if table.Page() != 4 {
		t.Fatalf("expected page 4, got %d", table.Page())
	}
	if table.HasNext() {
		t.Fatalf("expected HasNext false on last page")
	}

	// Shrinking the cache pulls the page back in range.
	table.SetRows(makeUsers(5))
	checkClamp(t, table)
	if table.Page() != 1 {
		t.Fatalf("expected page 1 after shrink, got %d", table.Page())
	}

	// Filtering to nothing keeps one (empty) page.
	table.SetRows(makeUsers(35))
	for i := 0; i < 3; i++ {
		table.Next()
	}
	table.SetFilter("no-such-user")
	checkClamp(t, table)
	if table.PageCount() != 1 {
		t.Fatalf("expected 1 page when filter matches nothing, got %d", table.PageCount())
	}
	if len(table.Rows()) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(table.Rows()))
	}
}

func TestPrevStopsAtFirstPage(t *testing.T) {
	table := NewUsersTable(10)
	table.SetRows(makeUsers(25))

	if table.HasPrev() {
		t.Fatalf("expected HasPrev false on first page")
	}
	table.Prev()
	if table.Page() != 1 {
		t.Fatalf("expected page to stay at 1, got %d", table.Page())
	}
}

func TestFilterRoundTrip(t *testing.T) {
	table := NewUsersTable(10)
	table.SetRows(makeUsers(30))

	table.SetFilter("First1")
	// First1, First10..First19 → 11 matches.
	if got := table.FilteredCount(); got != 11 {
		t.Fatalf("expected 11 filtered rows, got %d", got)
	}
	if table.Page() != 1 {
		t.Fatalf("filter must reset to page 1, got %d", table.Page())
	}

	table.SetFilter("")
	if got := table.FilteredCount(); got != 30 {
		t.Fatalf("clearing the filter must restore all 30 rows, got %d", got)
	}
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	table := NewUsersTable(10)
	table.SetRows([]upstream.User{
		{StudentID: 1, FirstName: "Aiko", LastName: "Tanaka"},
		{StudentID: 2, FirstName: "Ben", LastName: "Suzuki"},
	})

	table.SetFilter("TANAKA")
	if got := table.FilteredCount(); got != 1 {
		t.Fatalf("expected 1 match, got %d", got)
	}
	rows := table.Rows()
	if len(rows) != 1 || rows[0].StudentID != 1 {
		t.Fatalf("expected Tanaka row, got %+v", rows)
	}
}

func TestFilterMatchesFullName(t *testing.T) {
	table := NewUsersTable(10)
	table.SetRows([]upstream.User{
		{StudentID: 1, FirstName: "Aiko", LastName: "Tanaka"},
		{StudentID: 2, FirstName: "Ben", LastName: "Suzuki"},
	})

	// The concatenated "first last" string is searchable across the gap.
	table.SetFilter("aiko tan")
	if got := table.FilteredCount(); got != 1 {
		t.Fatalf("expected 1 match for full-name query, got %d", got)
	}
}

func TestCardsSearchFields(t *testing.T) {
	owner := 42
	table := NewCardsTable(10)
	table.SetRows([]upstream.ICCard{
		{UID: "04A1B2", StudentID: &owner, Status: upstream.CardActive},
		{UID: "04FFEE", StudentID: nil, Status: upstream.CardInactive},
	})

	table.SetFilter("42")
	if got := table.FilteredCount(); got != 1 {
		t.Fatalf("expected owner match, got %d rows", got)
	}
	table.SetFilter("inactive")
	if got := table.FilteredCount(); got != 1 {
		t.Fatalf("expected status match, got %d rows", got)
	}
	table.SetFilter("04")
	if got := table.FilteredCount(); got != 2 {
		t.Fatalf("expected uid matches, got %d rows", got)
	}
}

func TestDebtOnly(t *testing.T) {
	users := []upstream.User{
		{StudentID: 1, AccountBalance: 0},
		{StudentID: 2, AccountBalance: 300},
		{StudentID: 3, AccountBalance: -50},
		{StudentID: 4, AccountBalance: 1},
	}
	debtors := DebtOnly(users)
	if len(debtors) != 2 {
		t.Fatalf("expected 2 debtors, got %d", len(debtors))
	}
	if debtors[0].StudentID != 2 || debtors[1].StudentID != 4 {
		t.Fatalf("unexpected debtor set: %+v", debtors)
	}
}

func TestMergeActivityOrdering(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	purchases := []upstream.Purchase{
		{StudentID: 1, Price: 100, CreatedAt: base.Add(1 * time.Minute)},
		{StudentID: 2, Price: 150, CreatedAt: base.Add(3 * time.Minute)},
	}
	payments := []upstream.Payment{
		{StudentID: 1, AmountPaid: 500, CreatedAt: base.Add(2 * time.Minute)},
		{StudentID: 3, AmountPaid: 200, CreatedAt: base.Add(3 * time.Minute)},
	}

	events := MergeActivity(purchases, payments)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time.After(events[i-1].Time) {
			t.Fatalf("events not sorted descending at index %d", i)
		}
	}
	// Stable merge: the tied pair keeps the purchase first.
	if events[0].Kind != ActivityPurchase || events[0].StudentID != 2 {
		t.Fatalf("expected tied purchase first, got %+v", events[0])
	}
	if events[1].Kind != ActivityPayment || events[1].StudentID != 3 {
		t.Fatalf("expected tied payment second, got %+v", events[1])
	}
}

func TestActivityTableHasNoFilter(t *testing.T) {
	table := NewActivityTable(10)
	table.SetRows([]ActivityEvent{{Kind: ActivityPurchase, Amount: 100}})
	table.SetFilter("nothing matches this")
	if got := table.FilteredCount(); got != 1 {
		t.Fatalf("activity table must ignore filters, got %d rows", got)
	}
}
