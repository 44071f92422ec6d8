package model

import "strings"

// Customer is the contact snapshot taken at checkout and carried unchanged
// from the pending order to the confirmed order.
type Customer struct {
	UserID   int64
	Username string
	FullName string
	Phone    string
	Email    string
}

// NewCustomer builds a Customer with trimmed fields.
func NewCustomer(userID int64, username, fullName, phone, email string) Customer {
	return Customer{
		UserID:   userID,
		Username: strings.TrimPrefix(strings.TrimSpace(username), "@"),
		FullName: strings.TrimSpace(fullName),
		Phone:    strings.TrimSpace(phone),
		Email:    strings.TrimSpace(email),
	}
}

// HasContact reports whether the customer can receive a fiscal receipt.
func (c Customer) HasContact() bool {
	return c.Phone != "" || c.Email != ""
}
