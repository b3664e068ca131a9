// Package forms checks user input before it is turned into API requests.
// A form that fails validation never reaches the network.
package forms

import (
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

const (
	minUsernameLen = 2
	minPasswordLen = 6
	minYear        = 1970
)

const (
	invalidEmailMessage    = "Please enter a valid email address"
	shortUsernameMessage   = "Username must be at least 2 characters"
	shortPasswordMessage   = "Password must be at least 6 characters"
	passwordMissingMessage = "Password is required"
	currentMissingMessage  = "Current password is required"
	mismatchMessage        = "Passwords do not match"
	descriptionMessage     = "Description is required"
	amountMessage          = "Amount must be positive"
	budgetAmountMessage    = "Budget must be positive"
	categoryMessage        = "Category is required"
	nameMessage            = "Name is required"
	colorMessage           = "Color must be a hex value like #4caf50"
	dateMessage            = "Date must be in YYYY-MM-DD format"
	kindMessage            = "Type must be income or expense"
	monthMessage           = "Month must be between 1 and 12"
	yearMessage            = "Year must be 1970 or later"
	emptyChangeMessage     = "Nothing to update"
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors lists every failed field of a form, in field order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

func (v ValidationErrors) Messages() []string {
	res := make([]string, 0, len(v))
	for _, e := range v {
		res = append(res, e.Message)
	}
	return res
}

type checker struct {
	errs ValidationErrors
}

func (c *checker) check(ok bool, field, message string) {
	if !ok {
		c.errs = append(c.errs, FieldError{Field: field, Message: message})
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

func (c *checker) email(field, value string) {
	c.check(govalidator.IsEmail(strings.TrimSpace(value)), field, invalidEmailMessage)
}

func (c *checker) required(field, value, message string) {
	c.check(strings.TrimSpace(value) != "", field, message)
}

func (c *checker) minLen(field, value string, n int, message string) {
	c.check(len([]rune(value)) >= n, field, message)
}

// positive parses a strictly positive decimal amount.
func (c *checker) positive(field, value, message string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	ok := err == nil && d.IsPositive()
	c.check(ok, field, message)
	if !ok {
		return decimal.Zero
	}
	return d
}

// date parses an optional calendar date as midnight in loc (UTC when nil),
// nil when value is blank.
func (c *checker) date(field, value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	c.check(err == nil, field, dateMessage)
	if err != nil {
		return nil
	}
	return &t
}

func (c *checker) color(field, value string) {
	if value == "" {
		return
	}
	c.check(govalidator.IsHexcolor(value) && strings.HasPrefix(value, "#"), field, colorMessage)
}

func (c *checker) intRange(field, value string, lo, hi int, message string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	ok := err == nil && n >= lo && (hi == 0 || n <= hi)
	c.check(ok, field, message)
	return n
}
