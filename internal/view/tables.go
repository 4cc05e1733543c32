package view

import (
	"fmt"
	"strconv"

	"github.com/ishiasaka/labshop/internal/upstream"
)

// Per-entity table constructors. Search strings mirror what the admin
// panel matches against: users by id and full name, cards by uid, owner
// and status, shelves by id and port.

func NewUsersTable(pageSize int) *Table[upstream.User] {
	return New(pageSize, userSearch)
}

func NewDebtTable(pageSize int) *Table[upstream.User] {
	return New(pageSize, userSearch)
}

func NewCardsTable(pageSize int) *Table[upstream.ICCard] {
	return New(pageSize, func(c upstream.ICCard) []string {
		owner := ""
		if c.StudentID != nil {
			owner = strconv.Itoa(*c.StudentID)
		}
		return []string{c.UID, owner, c.Status}
	})
}

func NewShelvesTable(pageSize int) *Table[upstream.Shelf] {
	return New(pageSize, func(s upstream.Shelf) []string {
		return []string{s.ShelfID, strconv.Itoa(s.USBPort)}
	})
}

// NewActivityTable has no filter; the activity feed is paginated only.
func NewActivityTable(pageSize int) *Table[ActivityEvent] {
	return New[ActivityEvent](pageSize, nil)
}

func userSearch(u upstream.User) []string {
	return []string{
		strconv.Itoa(u.StudentID),
		fmt.Sprintf("%s %s", u.FirstName, u.LastName),
	}
}

// DebtOnly keeps the users whose balance reads as money owed.
func DebtOnly(users []upstream.User) []upstream.User {
	debtors := make([]upstream.User, 0, len(users))
	for _, u := range users {
		if u.AccountBalance > 0 {
			debtors = append(debtors, u)
		}
	}
	return debtors
}
