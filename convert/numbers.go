package convert

import (
	"github.com/shopspring/decimal"
)

// DecimalToFloat64 parses a decimal string such as "51.2" or "-0.5".
func DecimalToFloat64(str string) (float64, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func RoundFloat64(number float64, decimals int) float64 {
	return decimal.NewFromFloat(number).Round(int32(decimals)).InexactFloat64()
}
