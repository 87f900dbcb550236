// Package receipt renders an order as a plain-text document suitable for
// download. Everything comes from the order's stored snapshot; nothing is
// re-priced.
package receipt

import (
	"fmt"
	"strings"

	"github.com/furnicove/storefront-api/internal/models"
)

const divider = "----------------------------------------"

func Render(order *models.Order) string {

	var b strings.Builder

	b.WriteString("FURNICOVE ORDER RECEIPT\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Order ID: %s\n", order.ID)
	fmt.Fprintf(&b, "Date: %s\n", order.CreatedAt.Format("Jan 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Payment: %s (%s)\n", order.PaymentStatus, order.PaymentMethod)
	b.WriteString("\n")

	b.WriteString("CUSTOMER\n")
	fmt.Fprintf(&b, "  %s\n", order.CustomerName)
	fmt.Fprintf(&b, "  %s\n", order.CustomerEmail)

	if order.CustomerPhone != "" {
		fmt.Fprintf(&b, "  %s\n", order.CustomerPhone)
	}

	b.WriteString("\n")

	b.WriteString("SHIP TO\n")
	fmt.Fprintf(&b, "  %s\n", order.ShippingAddress.Address)
	fmt.Fprintf(&b, "  %s, %s %s\n", order.ShippingAddress.City, order.ShippingAddress.State, order.ShippingAddress.ZipCode)
	fmt.Fprintf(&b, "  %s\n", order.ShippingAddress.Country)
	b.WriteString("\n")

	b.WriteString("ITEMS\n")

	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %dx %s @ $%.2f = $%.2f\n", item.Quantity, item.ProductName, item.UnitPrice, item.TotalPrice)

		if item.Discount > 0 {
			fmt.Fprintf(&b, "      you saved $%.2f\n", item.Discount)
		}
	}

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Subtotal: $%.2f\n", order.Subtotal)

	if order.Discount > 0 {
		fmt.Fprintf(&b, "Discount: -$%.2f\n", order.Discount)
	}

	if order.Shipping == 0 {
		b.WriteString("Shipping: FREE\n")
	} else {
		fmt.Fprintf(&b, "Shipping: $%.2f\n", order.Shipping)
	}

	fmt.Fprintf(&b, "Tax: $%.2f\n", order.Tax)
	fmt.Fprintf(&b, "TOTAL: $%.2f\n", order.Total)
	b.WriteString(divider + "\n")
	b.WriteString("Thank you for shopping with Furnicove!\n")

	return b.String()
}
