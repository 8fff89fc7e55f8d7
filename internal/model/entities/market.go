package entities

import "time"

// PricePoint is one mandi quotation for a commodity on a given arrival day.
// Prices are in rupees per quintal, as published by the market boards.
type PricePoint struct {
	Commodity   string    `json:"commodity"`
	Variety     string    `json:"variety"`
	Market      string    `json:"market"`
	District    string    `json:"district"`
	State       string    `json:"state"`
	MinPrice    float64   `json:"min_price"`
	MaxPrice    float64   `json:"max_price"`
	ModalPrice  float64   `json:"modal_price"`
	ArrivalDate time.Time `json:"arrival_date"`
}
