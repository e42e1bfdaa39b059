package models

import "time"

// ContractSide records how a contract was opened.
type ContractSide string

const (
	ContractSideBuy   ContractSide = "BUY"
	ContractSideWrite ContractSide = "WRITE"
)

// Contract is the premium and Greeks snapshot handed to trade execution.
type Contract struct {
	ID           string       `json:"id"`
	Symbol       string       `json:"symbol"`
	Type         OptionType   `json:"type"`
	Side         ContractSide `json:"side"`
	Strike       float64      `json:"strike"`
	Spot         float64      `json:"spot"`
	Premium      float64      `json:"premium"`
	Quantity     int          `json:"quantity"`
	DaysToExpiry int          `json:"days_to_expiry"`
	Sigma        float64      `json:"sigma"`
	Rate         float64      `json:"rate"`
	Greeks       Greeks       `json:"greeks"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ExpiresAt returns the expiry timestamp implied by CreatedAt and DaysToExpiry.
func (c *Contract) ExpiresAt() time.Time {
	return c.CreatedAt.AddDate(0, 0, c.DaysToExpiry)
}
