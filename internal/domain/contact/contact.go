package contact

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("contact not found")

// Date is a calendar date (no time-of-day) serialized as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)

	if err != nil {
		return Date{}, err
	}

	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)

	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}

	parsed, err := ParseDate(s[1 : len(s)-1])

	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Scan/Value let pgx read and write DATE columns directly.

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into contact.Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

type Contact struct {
	ID             int64     `json:"contact_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Birthday       *Date     `json:"birthday,omitempty"`
	AdditionalInfo *string   `json:"additional_info,omitempty"`
	Verified       bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateContactRequest struct {
	FirstName      string  `json:"first_name" binding:"required,min=1,max=80"`
	LastName       string  `json:"last_name" binding:"required,min=1,max=80"`
	Email          string  `json:"email" binding:"required,email"`
	PhoneNumber    string  `json:"phone_number" binding:"required,min=3,max=30"`
	Birthday       *string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	AdditionalInfo *string `json:"additional_info" binding:"omitempty,max=1000"`
}

// partial update: only non-nil fields overwrite stored values
type UpdateContactRequest struct {
	FirstName      *string `json:"first_name" binding:"omitempty,min=1,max=80"`
	LastName       *string `json:"last_name" binding:"omitempty,min=1,max=80"`
	Email          *string `json:"email" binding:"omitempty,email"`
	PhoneNumber    *string `json:"phone_number" binding:"omitempty,min=3,max=30"`
	Birthday       *string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	AdditionalInfo *string `json:"additional_info" binding:"omitempty,max=1000"`
}

// ListFilter holds the optional substring filter for list queries.
type ListFilter struct {
	Query *string
}
