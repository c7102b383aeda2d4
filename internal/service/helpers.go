package service

import "github.com/shopspring/decimal"

func nullable(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
