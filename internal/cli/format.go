package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"option-pricer/internal/models"
)

// FormatCurrency formats an amount with a dollar sign, thousands separators
// and two decimal places.
func FormatCurrency(amount float64) string {
	return FormatDecimal(decimal.NewFromFloat(amount), 2)
}

// FormatDecimal formats d rounded to places with thousands separators.
func FormatDecimal(d decimal.Decimal, places int32) string {
	negative := d.IsNegative()
	str := d.Abs().StringFixed(places)

	intPart, decPart, _ := strings.Cut(str, ".")
	result := "$" + groupThousands(intPart)
	if places > 0 {
		result += "." + decPart
	}
	if negative && !d.Round(places).IsZero() {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPrice formats a price with more precision below one unit.
func FormatPrice(price float64) string {
	if price >= 1 || price == 0 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatStrike formats a strike with as many decimals as its interval.
func FormatStrike(strike, interval float64) string {
	places := -int(decimal.NewFromFloat(interval).Exponent())
	if places < 0 {
		places = 0
	}
	return strconv.FormatFloat(strike, 'f', places, 64)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatGreeks formats option Greeks.
func FormatGreeks(g models.Greeks) string {
	return fmt.Sprintf("Δ: %.4f  Γ: %.4f  Θ: %.4f  ν: %.4f", g.Delta, g.Gamma, g.Theta, g.Vega)
}

// FormatIV formats a volatility as a percentage.
func FormatIV(iv float64) string {
	return fmt.Sprintf("%.2f%%", iv*100)
}

// FormatExpiry formats an expiry as its day count and calendar date.
func FormatExpiry(e models.Expiry, from time.Time) string {
	return fmt.Sprintf("%s (%s)", e, FormatDate(from.AddDate(0, 0, e.Days())))
}

// FormatDate formats a date.
func FormatDate(t time.Time) string {
	return t.Local().Format("02-Jan-2006")
}

// FormatDateTime formats a datetime.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatInt formats an integer with thousands separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}
