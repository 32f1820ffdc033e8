package notify

import (
	"fmt"
	"strings"

	"github.com/Moeabdelaziz007/WideWear/internal/models"
)

// FormatOrderCreated renders a new-order event as the operator message:
// short order reference, customer details, totals and itemized lines.
func FormatOrderCreated(e *models.OrderCreatedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 <b>طلب جديد!</b>\n\n")
	fmt.Fprintf(&b, "🆔 <code>#%s</code>\n", shortRef(e.OrderID))
	fmt.Fprintf(&b, "👤 %s\n", e.CustomerName)
	fmt.Fprintf(&b, "📱 %s\n", e.Phone)
	fmt.Fprintf(&b, "📍 %s\n", e.Address)
	fmt.Fprintf(&b, "✈️ %s\n", e.ShippingMethod)
	fmt.Fprintf(&b, "💰 <b>%s EGP</b> (%s)\n\n", e.Total.StringFixed(2), paymentLabel(e.PaymentMethod))
	fmt.Fprintf(&b, "📦 <b>%d منتج:</b>\n", len(e.Items))

	for _, item := range e.Items {
		fmt.Fprintf(&b, "  • %s (%s) × %d\n", item.Name, item.Size, item.Quantity)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatPaymentReceived renders a payment-confirmed event.
func FormatPaymentReceived(e *models.OrderConfirmedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "💸 <b>تم الدفع بنجاح!</b>\n\n")
	fmt.Fprintf(&b, "🆔 <code>#%s</code>\n", shortRef(e.OrderID))
	fmt.Fprintf(&b, "🏦 طريقة الدفع: Fawry (%s)\n", e.PaymentMethod)
	fmt.Fprintf(&b, "💰 المبلغ المباشر: %s EGP\n", e.Amount.StringFixed(2))
	fmt.Fprintf(&b, "🔄 رقم مرجع فوري: %s", e.FawryRefNum)

	return b.String()
}

func shortRef(orderID string) string {
	ref := orderID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return strings.ToUpper(ref)
}

func paymentLabel(method string) string {
	if method == "cod" {
		return "دفع عند الاستلام"
	}
	return method
}
