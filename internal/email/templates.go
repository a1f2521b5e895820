package email

import (
	"fmt"
	"html"
	"strings"
)

// OrderLine is one row of the confirmation table.
type OrderLine struct {
	Name     string
	Quantity int
	Price    float64
}

// BuildOrderConfirmationBody renders the order confirmation HTML.
func BuildOrderConfirmationBody(orderID string, total float64, items []OrderLine) string {
	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding:4px 12px 4px 0">%s</td><td style="padding:4px 12px" align="right">×%d</td><td style="padding:4px 0" align="right">$%.2f</td></tr>`,
			html.EscapeString(item.Name), item.Quantity, item.Price*float64(item.Quantity)))
	}

	return fmt.Sprintf(`<html><body style="font-family:sans-serif;color:#333">
<h2>Thanks for your order!</h2>
<p>Your order <strong>%s</strong> has been placed.</p>
<table style="border-collapse:collapse">%s</table>
<p style="margin-top:16px"><strong>Total: $%.2f</strong></p>
<p>We'll send another email when your order ships.</p>
</body></html>`, html.EscapeString(orderID), rows.String(), total)
}

// BuildPaymentFailedBody renders the payment failure notice.
func BuildPaymentFailedBody(reason string) string {
	return fmt.Sprintf(`<html><body style="font-family:sans-serif;color:#333">
<h2>Payment problem</h2>
<p>We couldn't complete your checkout: %s</p>
<p>No order was placed and your cart is unchanged. You can return to checkout and try again.</p>
</body></html>`, html.EscapeString(reason))
}
