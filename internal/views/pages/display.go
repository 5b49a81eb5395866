package pages

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posdash/models"
)

// DefaultDash renders a placeholder for empty values.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// FormatPrice renders an amount in rupiah with thousands grouping, e.g.
// "Rp 12,500" or "Rp 1,250.50".
func FormatPrice(price decimal.Decimal) string {
	sign := ""
	if price.IsNegative() {
		sign = "-"
		price = price.Neg()
	}
	fixed := price.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	out := "Rp " + sign + groupThousands(whole)
	if frac != "00" {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatStock renders a stock level with its unit label.
func FormatStock(m models.Material) string {
	return strings.TrimSpace(formatNumber(m.Stock) + " " + string(m.Unit))
}

// FormatDate renders a creation timestamp in the list tables.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return DefaultDash("")
	}
	return t.Format("02 Jan 2006")
}

// CategoryName resolves a product's category for display.
func CategoryName(categories []models.Category, id *int64) string {
	if id == nil {
		return DefaultDash("")
	}
	if c, ok := FindByID(categories, *id, func(c models.Category) int64 { return c.ID }); ok {
		return c.Name
	}
	return DefaultDash("")
}

// Initial is the avatar letter shown for products without an image.
func Initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
