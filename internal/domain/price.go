package domain

import "time"

type PriceQuote struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	Date   time.Time `json:"-"`
}
