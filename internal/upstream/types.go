package upstream

import "time"

// User is an upstream account record. AccountBalance is the amount owed
// in yen; the balance itself is computed and owned by the upstream API.
type User struct {
	StudentID      int    `json:"student_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	AccountBalance int    `json:"account_balance"`
	Status         string `json:"status"`
}

// ICCard is a registered card. A nil StudentID means the card is not
// linked to any student.
type ICCard struct {
	UID       string `json:"uid"`
	StudentID *int   `json:"student_id"`
	Status    string `json:"status"`
}

const (
	CardActive   = "active"
	CardInactive = "inactive"
	CardLost     = "lost"
	CardDisabled = "disabled"
)

type Shelf struct {
	ShelfID string `json:"shelf_id"`
	USBPort int    `json:"usb_port"`
	Price   int    `json:"price"`
}

type Purchase struct {
	StudentID int       `json:"student_id"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	StudentID  int       `json:"student_id"`
	AmountPaid int       `json:"amount_paid"`
	CreatedAt  time.Time `json:"created_at"`
}

// CapturedCard is the sentinel returned by /ic_cards/captured. A nil UID
// means no freshly tapped card is waiting for registration.
type CapturedCard struct {
	UID *string `json:"uid"`
}

type LoginResult struct {
	AdminID  string `json:"admin_id"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}
