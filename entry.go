package shareplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/shareplan/date"
)

// This file defines the raw input records handed over by the file-parsing
// collaborator, and the closed enumerations derived from them at ingestion
// time. String matching on plan names happens here, once; everything
// downstream works on typed values.

// Category is the closed classification of an allocation.
// Every reference point belongs to exactly one category.
type Category int

const (
	// Uncategorized marks an allocation that matched no known category.
	// It contributes zero to all totals and is flagged for audit.
	Uncategorized Category = iota
	// UserInvestment is a purchase paid by the employee.
	UserInvestment
	// CompanyMatch is an employer matching contribution.
	CompanyMatch
	// FreeShares is a free-share award.
	FreeShares
	// DividendIncome is a dividend reinvestment.
	DividendIncome
)

func (c Category) String() string {
	switch c {
	case UserInvestment:
		return "user investment"
	case CompanyMatch:
		return "company match"
	case FreeShares:
		return "free shares"
	case DividendIncome:
		return "dividend income"
	default:
		return "uncategorized"
	}
}

// Categories lists all real categories, in reporting order.
var Categories = []Category{UserInvestment, CompanyMatch, FreeShares, DividendIncome}

// Categorize maps an allocation's plan and contribution type to its Category.
// The rule set is a closed enumeration matched case-sensitively on the source
// strings; an unmatched pair returns Uncategorized and the caller records a
// classification-gap diagnostic.
func Categorize(plan, contributionType string) Category {
	switch {
	case contributionType == "Company match":
		return CompanyMatch
	case contributionType == "Purchase" && strings.Contains(plan, "Employee Share Purchase Plan"):
		return UserInvestment
	case contributionType == "Award" && strings.Contains(plan, "Free Share"):
		return FreeShares
	case strings.Contains(plan, "Dividend Reinvestment"):
		return DividendIncome
	default:
		return Uncategorized
	}
}

// OrderType is the closed set of transaction order types.
type OrderType int

const (
	OrderUnknown OrderType = iota
	OrderSell
	OrderSellMarket
	OrderSellLimit
	OrderTransfer
)

func (o OrderType) String() string {
	switch o {
	case OrderSell:
		return "Sell"
	case OrderSellMarket:
		return "Sell at market price"
	case OrderSellLimit:
		return "Sell with price limit"
	case OrderTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// ParseOrderType maps the source file's order type string to its OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "Sell":
		return OrderSell, nil
	case "Sell at market price":
		return OrderSellMarket, nil
	case "Sell with price limit":
		return OrderSellLimit, nil
	case "Transfer":
		return OrderTransfer, nil
	default:
		return OrderUnknown, fmt.Errorf("unknown order type: %q", s)
	}
}

// MarshalJSON encodes the order type as its source file string.
func (o OrderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes the order type from its source file string.
func (o *OrderType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseOrderType(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// reducesShares reports whether this order type consumes outstanding shares.
func (o OrderType) reducesShares() bool {
	switch o {
	case OrderSell, OrderSellMarket, OrderSellLimit, OrderTransfer:
		return true
	default:
		return false
	}
}

// StatusExecuted is the only transaction status that counts. Transactions in
// any other status (pending, cancelled...) are carried for display but never
// affect quantities or proceeds.
const StatusExecuted = "Executed"

// AllocationEntry is one allocation row from the portfolio file.
type AllocationEntry struct {
	Plan             string    `json:"plan"`
	ContributionType string    `json:"contributionType"`
	AllocationDate   date.Date `json:"allocationDate"`
	CostBasis        Money     `json:"costBasis"`   // price per share at acquisition, original currency
	Quantity         Quantity  `json:"quantity"`    // shares granted or purchased in this lot
	Available        Quantity  `json:"available"`   // subset currently unlocked for sale
	AvailableFrom    date.Date `json:"availableFrom,omitempty"`
}

// TransactionEntry is one executed (or pending) order from the transactions file.
type TransactionEntry struct {
	Date           date.Date `json:"date"`
	OrderType      OrderType `json:"orderType"`
	Status         string    `json:"status"`
	Quantity       Quantity  `json:"quantity"` // absolute number of shares
	ExecutionPrice Money     `json:"executionPrice"`
	Plan           string    `json:"plan,omitempty"`
}

// Executed reports whether the transaction was executed and moves shares.
func (t TransactionEntry) Executed() bool {
	return t.Status == StatusExecuted && t.OrderType.reducesShares()
}

// Proceeds returns the cash received for this transaction.
func (t TransactionEntry) Proceeds() Money {
	return t.ExecutionPrice.Mul(t.Quantity)
}
