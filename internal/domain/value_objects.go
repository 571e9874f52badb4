package domain

import (
	"errors"
	"strings"
)

type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount <= 0 {
		return Money{}, errors.New("amount must be positive")
	}
	c := strings.ToUpper(strings.TrimSpace(currency))
	if len(c) != 3 {
		return Money{}, errors.New("currency must be a 3-letter code")
	}
	return Money{Amount: amount, Currency: c}, nil
}
