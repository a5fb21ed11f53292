// Package discount implements the shop's birthday discount.
//
// Everything here is a pure function of its inputs. Callers decide what
// "today" is, normally the current date in the shop's time zone.
package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// BirthdayPercent is the reduction granted on the customer's birthday.
const BirthdayPercent = 15

var (
	hundred = decimal.NewFromInt(100)
	rate    = decimal.NewFromInt(BirthdayPercent).Div(hundred)
)

// IsBirthday reports whether today falls on the customer's birthday. Only month
// and day are compared. A 29 February birthday is celebrated on 28 February in
// non-leap years.
func IsBirthday(today, birthDate time.Time) bool {
	tm, td := today.Month(), today.Day()
	bm, bd := birthDate.Month(), birthDate.Day()

	if tm == bm && td == bd {
		return true
	}
	if bm == time.February && bd == 29 && !isLeap(today.Year()) {
		return tm == time.February && td == 28
	}
	return false
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Amount returns the discount owed on price, rounded to cents.
func Amount(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price.Mul(rate).Round(2)
}

// Discounted returns price minus the birthday discount.
func Discounted(price decimal.Decimal) decimal.Decimal {
	return price.Sub(Amount(price))
}

// Apply returns the payable total and the discount for amount. Without a
// birthday the amount is returned unchanged with a zero discount.
func Apply(amount decimal.Decimal, isBirthday bool) (total, discount decimal.Decimal) {
	if !isBirthday {
		return amount, decimal.Zero
	}
	discount = Amount(amount)
	return amount.Sub(discount), discount
}

// Quote is the outcome of pricing a basket for one customer on one day.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Birthday bool
}

// Policy evaluates the birthday discount in a fixed time zone.
type Policy struct {
	loc *time.Location
}

// NewPolicy returns a policy that reads dates in loc. A nil loc means UTC.
func NewPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{loc: loc}
}

// Today converts now into the policy's calendar day.
func (p Policy) Today(now time.Time) time.Time {
	return now.In(p.loc)
}

// Evaluate prices subtotal for a customer born on birthDate. A nil birthDate
// never earns the discount.
func (p Policy) Evaluate(now time.Time, birthDate *time.Time, subtotal decimal.Decimal) Quote {
	birthday := birthDate != nil && IsBirthday(p.Today(now), *birthDate)
	total, off := Apply(subtotal, birthday)
	return Quote{
		Subtotal: subtotal,
		Discount: off,
		Total:    total,
		Birthday: birthday,
	}
}
