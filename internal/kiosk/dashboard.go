package kiosk

import (
	"context"
	"log"
	"strconv"
	"sync"

	"github.com/ishiasaka/labshop/internal/upstream"
	"github.com/ishiasaka/labshop/internal/view"
)

// API is the slice of the upstream client the dashboard depends on.
type API interface {
	ListUsers(ctx context.Context) ([]upstream.User, error)
	CreateUser(ctx context.Context, studentID int, firstName, lastName string) error
	SetUserStatus(ctx context.Context, studentID int, status string) error
	ListPurchases(ctx context.Context) ([]upstream.Purchase, error)
	ListPayments(ctx context.Context) ([]upstream.Payment, error)
	CreatePayment(ctx context.Context, studentID, amountPaid int) error
	ListCards(ctx context.Context) ([]upstream.ICCard, error)
	CapturedCard(ctx context.Context) (upstream.CapturedCard, error)
	RegisterCard(ctx context.Context, uid string, studentID int) error
	ActivateCard(ctx context.Context, uid string) error
	DeactivateCard(ctx context.Context, uid string) error
	UnlinkCard(ctx context.Context, uid string) error
	ListShelves(ctx context.Context) ([]upstream.Shelf, error)
	CreateShelf(ctx context.Context, shelf upstream.Shelf) error
	UpdateShelf(ctx context.Context, shelfID string, usbPort, price int) error
	DeleteShelf(ctx context.Context, shelfID string) error
	PutSetting(ctx context.Context, key, value string) error
}

// Dashboard owns the table view-models and the upstream adapter. Table
// state belongs to the goroutine running the agent loop; Refresh fetches
// concurrently but applies results from the calling goroutine, so
// overlapping refreshes resolve last-wins per dataset.
type Dashboard struct {
	api API

	Users    *view.Table[upstream.User]
	Debt     *view.Table[upstream.User]
	Cards    *view.Table[upstream.ICCard]
	Shelves  *view.Table[upstream.Shelf]
	Activity *view.Table[view.ActivityEvent]
}

func NewDashboard(api API, pageSize int) *Dashboard {
	return &Dashboard{
		api:      api,
		Users:    view.NewUsersTable(pageSize),
		Debt:     view.NewDebtTable(pageSize),
		Cards:    view.NewCardsTable(pageSize),
		Shelves:  view.NewShelvesTable(pageSize),
		Activity: view.NewActivityTable(pageSize),
	}
}

// Refresh re-fetches every dataset concurrently and replaces each cache
// wholesale. A failed fetch leaves that cache untouched and is logged;
// the other datasets still land.
func (d *Dashboard) Refresh(ctx context.Context) {
	var (
		wg        sync.WaitGroup
		users     []upstream.User
		usersErr  error
		purchases []upstream.Purchase
		purchErr  error
		payments  []upstream.Payment
		payErr    error
		cards     []upstream.ICCard
		cardsErr  error
		shelves   []upstream.Shelf
		shelfErr  error
	)

	wg.Add(4)
	go func() { defer wg.Done(); users, usersErr = d.api.ListUsers(ctx) }()
	go func() {
		defer wg.Done()
		purchases, purchErr = d.api.ListPurchases(ctx)
		payments, payErr = d.api.ListPayments(ctx)
	}()
	go func() { defer wg.Done(); cards, cardsErr = d.api.ListCards(ctx) }()
	go func() { defer wg.Done(); shelves, shelfErr = d.api.ListShelves(ctx) }()
	wg.Wait()

	if usersErr != nil {
		log.Printf("refresh users failed: %v", usersErr)
	} else {
		d.Users.SetRows(users)
		d.Debt.SetRows(view.DebtOnly(users))
	}
	if purchErr != nil || payErr != nil {
		log.Printf("refresh activity failed: purchases=%v payments=%v", purchErr, payErr)
	} else {
		d.Activity.SetRows(view.MergeActivity(purchases, payments))
	}
	if cardsErr != nil {
		log.Printf("refresh cards failed: %v", cardsErr)
	} else {
		d.Cards.SetRows(cards)
	}
	if shelfErr != nil {
		log.Printf("refresh shelves failed: %v", shelfErr)
	} else {
		d.Shelves.SetRows(shelves)
	}
}

// Mutations call upstream and then unconditionally re-fetch the caches
// the action affects. No optimistic local updates.

func (d *Dashboard) CreateUser(ctx context.Context, studentID int, firstName, lastName string) error {
	if err := d.api.CreateUser(ctx, studentID, firstName, lastName); err != nil {
		return err
	}
	d.refreshUsers(ctx)
	d.refreshActivity(ctx)
	return nil
}

func (d *Dashboard) ToggleUserStatus(ctx context.Context, studentID int, status string) error {
	if err := d.api.SetUserStatus(ctx, studentID, status); err != nil {
		return err
	}
	d.refreshUsers(ctx)
	return nil
}

func (d *Dashboard) RegisterCard(ctx context.Context, uid string, studentID int) error {
	if err := d.api.RegisterCard(ctx, uid, studentID); err != nil {
		return err
	}
	d.refreshUsers(ctx)
	d.refreshActivity(ctx)
	return nil
}

func (d *Dashboard) ActivateCard(ctx context.Context, uid string) error {
	if err := d.api.ActivateCard(ctx, uid); err != nil {
		return err
	}
	d.refreshCards(ctx)
	return nil
}

func (d *Dashboard) DeactivateCard(ctx context.Context, uid string) error {
	if err := d.api.DeactivateCard(ctx, uid); err != nil {
		return err
	}
	d.refreshCards(ctx)
	return nil
}

func (d *Dashboard) UnlinkCard(ctx context.Context, uid string) error {
	if err := d.api.UnlinkCard(ctx, uid); err != nil {
		return err
	}
	d.refreshCards(ctx)
	return nil
}

// SaveShelf creates the shelf, falling back to an update when the id
// already exists.
func (d *Dashboard) SaveShelf(ctx context.Context, shelf upstream.Shelf) error {
	err := d.api.CreateShelf(ctx, shelf)
	if upstream.IsConflict(err) {
		err = d.api.UpdateShelf(ctx, shelf.ShelfID, shelf.USBPort, shelf.Price)
	}
	if err != nil {
		return err
	}
	d.refreshShelves(ctx)
	return nil
}

func (d *Dashboard) DeleteShelf(ctx context.Context, shelfID string) error {
	if err := d.api.DeleteShelf(ctx, shelfID); err != nil {
		return err
	}
	d.refreshShelves(ctx)
	return nil
}

func (d *Dashboard) SetMaxDebt(ctx context.Context, limit int) error {
	return d.api.PutSetting(ctx, "max_debt_limit", strconv.Itoa(limit))
}

// Pay settles a payback from the kiosk, then refreshes the balances and
// the activity feed the payment changed.
func (d *Dashboard) Pay(ctx context.Context, studentID, amount int) error {
	if err := d.api.CreatePayment(ctx, studentID, amount); err != nil {
		return err
	}
	d.refreshUsers(ctx)
	d.refreshActivity(ctx)
	return nil
}

func (d *Dashboard) refreshUsers(ctx context.Context) {
	users, err := d.api.ListUsers(ctx)
	if err != nil {
		log.Printf("refresh users failed: %v", err)
		return
	}
	d.Users.SetRows(users)
	d.Debt.SetRows(view.DebtOnly(users))
}

func (d *Dashboard) refreshActivity(ctx context.Context) {
	purchases, err := d.api.ListPurchases(ctx)
	if err != nil {
		log.Printf("refresh activity failed: %v", err)
		return
	}
	payments, err := d.api.ListPayments(ctx)
	if err != nil {
		log.Printf("refresh activity failed: %v", err)
		return
	}
	d.Activity.SetRows(view.MergeActivity(purchases, payments))
}

func (d *Dashboard) refreshCards(ctx context.Context) {
	cards, err := d.api.ListCards(ctx)
	if err != nil {
		log.Printf("refresh cards failed: %v", err)
		return
	}
	d.Cards.SetRows(cards)
}

func (d *Dashboard) refreshShelves(ctx context.Context) {
	shelves, err := d.api.ListShelves(ctx)
	if err != nil {
		log.Printf("refresh shelves failed: %v", err)
		return
	}
	d.Shelves.SetRows(shelves)
}
