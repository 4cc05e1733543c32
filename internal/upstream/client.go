package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin adapter over the lab-shop API. All business rules
// (balances, debt limits, card capture, settlement) live upstream; the
// client only issues requests and decodes responses.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWithHTTPClient is used by tests and by callers that need custom
// transport settings.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult
	payload := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/admin/login", payload, &result)
	return result, err
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []User{}
	}
	return resp.Users, nil
}

func (c *Client) CreateUser(ctx context.Context, studentID int, firstName, lastName string) error {
	payload := map[string]interface{}{
		"student_id": studentID,
		"first_name": firstName,
		"last_name":  lastName,
	}
	return c.do(ctx, http.MethodPost, "/users/", payload, nil)
}

func (c *Client) SetUserStatus(ctx context.Context, studentID int, status string) error {
	path := fmt.Sprintf("/users/%d/status?status=%s", studentID, url.QueryEscape(status))
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	var resp struct {
		Purchases []Purchase `json:"purchases"`
	}
	if err := c.do(ctx, http.MethodGet, "/purchases/", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Purchases == nil {
		resp.Purchases = []Purchase{}
	}
	return resp.Purchases, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	var resp struct {
		Payments []Payment `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/payments/", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Payments == nil {
		resp.Payments = []Payment{}
	}
	return resp.Payments, nil
}

func (c *Client) CreatePayment(ctx context.Context, studentID, amountPaid int) error {
	payload := map[string]interface{}{
		"student_id":  studentID,
		"amount_paid": amountPaid,
	}
	return c.do(ctx, http.MethodPost, "/payments/", payload, nil)
}

func (c *Client) ListCards(ctx context.Context) ([]ICCard, error) {
	var cards []ICCard
	if err := c.do(ctx, http.MethodGet, "/ic_cards/", nil, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []ICCard{}
	}
	return cards, nil
}

func (c *Client) CapturedCard(ctx context.Context) (CapturedCard, error) {
	var card CapturedCard
	err := c.do(ctx, http.MethodGet, "/ic_cards/captured", nil, &card)
	return card, err
}

func (c *Client) RegisterCard(ctx context.Context, uid string, studentID int) error {
	payload := map[string]interface{}{"student_id": studentID}
	return c.do(ctx, http.MethodPost, "/ic_cards/"+url.PathEscape(uid)+"/register", payload, nil)
}

func (c *Client) ActivateCard(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodPost, "/ic_cards/"+url.PathEscape(uid)+"/activate", nil, nil)
}

func (c *Client) DeactivateCard(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodPost, "/ic_cards/"+url.PathEscape(uid)+"/deactivate", nil, nil)
}

func (c *Client) UnlinkCard(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodPost, "/ic_cards/"+url.PathEscape(uid)+"/unlink", nil, nil)
}

// ListShelves accepts both response shapes the upstream has shipped:
// a bare array and an object with a "shelves" field.
func (c *Client) ListShelves(ctx context.Context) ([]Shelf, error) {
	raw, err := c.raw(ctx, http.MethodGet, "/shelves/", nil)
	if err != nil {
		return nil, err
	}
	var shelves []Shelf
	if err := json.Unmarshal(raw, &shelves); err == nil {
		return shelves, nil
	}
	var resp struct {
		Shelves []Shelf `json:"shelves"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode shelves: %w", err)
	}
	if resp.Shelves == nil {
		resp.Shelves = []Shelf{}
	}
	return resp.Shelves, nil
}

func (c *Client) CreateShelf(ctx context.Context, shelf Shelf) error {
	return c.do(ctx, http.MethodPost, "/shelves/", shelf, nil)
}

func (c *Client) UpdateShelf(ctx context.Context, shelfID string, usbPort, price int) error {
	payload := map[string]interface{}{"usb_port": usbPort, "price": price}
	return c.do(ctx, http.MethodPatch, "/shelves/"+url.PathEscape(shelfID), payload, nil)
}

func (c *Client) DeleteShelf(ctx context.Context, shelfID string) error {
	return c.do(ctx, http.MethodDelete, "/shelves/"+url.PathEscape(shelfID), nil, nil)
}

func (c *Client) PutSetting(ctx context.Context, key, value string) error {
	payload := map[string]string{"key": key, "value": value}
	return c.do(ctx, http.MethodPut, "/settings", payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	raw, err := c.raw(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Status: resp.StatusCode,
			Detail: errorDetail(resp.StatusCode, resp.Header.Get("Content-Type"), raw),
		}
	}
	return raw, nil
}
