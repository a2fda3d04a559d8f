package email

import (
	"fmt"
	"strings"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int // cents
}

const bodyStyle = `font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;`

func wrapBody(heading, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="%s">
	<div style="background: #1d3557; padding: 24px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 22px;">%s</h1>
	</div>
	<div style="background: #fff; padding: 24px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		%s
		<hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;">
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. Reply through your account's issue thread if you have questions.
		</p>
	</div>
</body>
</html>`, bodyStyle, heading, inner)
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(orderID string, total int, items []OrderItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 10px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			name,
			item.Quantity,
			FormatCents(item.Price*item.Quantity),
		))
	}

	inner := fmt.Sprintf(`<p style="margin-top: 0;">Thanks for your order. We'll start printing shortly.</p>
		<div style="background: #f8f9fa; padding: 12px; border-radius: 5px; margin: 16px 0;">
			<p style="margin: 0; font-size: 13px; color: #666;">Order number</p>
			<p style="margin: 4px 0 0 0; font-size: 17px; font-weight: bold; font-family: monospace;">%s</p>
		</div>
		<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 10px; text-align: left;">Item</th>
					<th style="padding: 10px; text-align: center;">Qty</th>
					<th style="padding: 10px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>
		<div style="text-align: right; padding: 16px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 13px; color: #666;">Total</span>
			<span style="font-size: 22px; font-weight: bold; margin-left: 10px;">%s</span>
		</div>`,
		orderID, itemsHTML.String(), FormatCents(total))

	return wrapBody("Thanks for your order", inner)
}

// BuildReprintBody builds the HTML body for a reprint approval email
func BuildReprintBody(issueID, reprintOrderID string) string {
	inner := fmt.Sprintf(`<p style="margin-top: 0;">We've reviewed your issue and a free replacement is already in the print queue.</p>
		<p>Issue: <span style="font-family: monospace;">%s</span><br>
		Replacement order: <span style="font-family: monospace;">%s</span></p>
		<p>You'll get a shipping confirmation as soon as it leaves production.</p>`,
		issueID, reprintOrderID)
	return wrapBody("Replacement approved", inner)
}

// BuildRefundBody builds the HTML body for a refund approval email
func BuildRefundBody(issueID string, amount int) string {
	inner := fmt.Sprintf(`<p style="margin-top: 0;">We've reviewed your issue and approved a refund of <strong>%s</strong>.</p>
		<p>Issue: <span style="font-family: monospace;">%s</span></p>
		<p>The refund will appear on your original payment method within a few business days.</p>`,
		FormatCents(amount), issueID)
	return wrapBody("Refund approved", inner)
}

// BuildInfoRequestBody builds the HTML body for an information request email
func BuildInfoRequestBody(issueID, note string) string {
	noteHTML := ""
	if note != "" {
		noteHTML = fmt.Sprintf(`<div style="background: #f8f9fa; padding: 12px; border-radius: 5px; margin: 16px 0;">%s</div>`, note)
	}
	inner := fmt.Sprintf(`<p style="margin-top: 0;">We need a bit more information before we can resolve your issue
		<span style="font-family: monospace;">%s</span>.</p>
		%s
		<p>Reply in the issue thread from your account page. Issues left without a reply are closed automatically after a while.</p>`,
		issueID, noteHTML)
	return wrapBody("More information needed", inner)
}

// BuildIssueStatusBody builds the HTML body for a generic status update
func BuildIssueStatusBody(issueID, status string) string {
	inner := fmt.Sprintf(`<p style="margin-top: 0;">Your issue <span style="font-family: monospace;">%s</span> is now <strong>%s</strong>.</p>
		<p>Check the issue thread from your account page for details.</p>`,
		issueID, strings.ReplaceAll(status, "_", " "))
	return wrapBody("Update on your issue", inner)
}

// FormatCents renders an amount of cents as a dollar string with
// thousands separators
func FormatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := cents / 100
	rest := cents % 100

	str := fmt.Sprintf("%d", dollars)
	var grouped strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		grouped.WriteString(str[:remainder])
		if len(str) > remainder {
			grouped.WriteString(",")
		}
	}
	for i := remainder; i < len(str); i += 3 {
		grouped.WriteString(str[i : i+3])
		if i+3 < len(str) {
			grouped.WriteString(",")
		}
	}

	return fmt.Sprintf("%s$%s.%02d", sign, grouped.String(), rest)
}
