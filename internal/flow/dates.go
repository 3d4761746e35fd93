package flow

import (
	"errors"
	"time"
)

// DateLayout is the wire and display format for delivery dates.
const DateLayout = "02.01.2006"

// deliveryWindowDays is how far ahead delivery can be ordered.
const deliveryWindowDays = 30

var (
	// ErrMalformedDate indicates the input does not parse as DD.MM.YYYY.
	ErrMalformedDate = errors.New("malformed delivery date")
	// ErrDateOutOfWindow indicates a well-formed date outside the offering window.
	ErrDateOutOfWindow = errors.New("delivery date outside the offering window")
)

// DeliveryWindow returns the orderable dates: the next 30 calendar days
// starting tomorrow. Today is never offered.
func DeliveryWindow(now time.Time) []string {
	dates := make([]string, 0, deliveryWindowDays)
	for i := 1; i <= deliveryWindowDays; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(DateLayout))
	}

	return dates
}

// ParseDeliveryDate validates a date token payload against the offering
// window and returns its canonical DD.MM.YYYY form.
func ParseDeliveryDate(input string, now time.Time) (string, error) {
	parsed, err := time.ParseInLocation(DateLayout, input, now.Location())
	if err != nil {
		return "", ErrMalformedDate
	}

	canonical := parsed.Format(DateLayout)
	for _, date := range DeliveryWindow(now) {
		if date == canonical {
			return canonical, nil
		}
	}

	return "", ErrDateOutOfWindow
}
