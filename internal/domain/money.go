package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Деньги хранятся в минимальных единицах (центах), вся арифметика — целочисленная.
// Парсинг и форматирование ограничены двумя знаками после разделителя,
// чтобы исключить накопление ошибок округления.

// ParseAmountMinor разбирает десятичную строку вида "12.99" в минимальные единицы.
// Допускаются формы "12", "12.9" и "12.99"; отрицательные значения и более двух
// знаков после точки отклоняются с ErrPriceInvalid.
func ParseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrPriceInvalid
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
		if frac == "" {
			return 0, ErrPriceInvalid
		}
	}
	if whole == "" || len(frac) > 2 {
		return 0, ErrPriceInvalid
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrPriceInvalid
	}

	var cents int64
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrPriceInvalid
		}
		cents = d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrPriceInvalid
		}
		cents = d
	}

	const maxUnits = (1<<63 - 1) / 100
	if units > maxUnits {
		return 0, ErrPriceInvalid
	}

	return units*100 + cents, nil
}

// FormatAmountMinor форматирует минимальные единицы обратно в десятичную строку ("25.50").
func FormatAmountMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
