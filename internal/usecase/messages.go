package usecase

import (
	"fmt"
	"strings"

	"github.com/polkiloo/storebot/internal/domain/model"
)

const (
	msgPaymentFailed        = "❌ Оплата не прошла"
	msgPaymentFailedOrVoid  = "❌ Оплата не прошла или была отменена"
	msgPaymentAccepted      = "✅ Оплата прошла, заказ подтверждён"
	adminSummaryLimit       = 10
	adminSummaryPlaceholder = "• -"
)

// PaymentFailedText is sent when a watched payment ends unsuccessfully.
func PaymentFailedText() string { return msgPaymentFailed }

// PaymentVoidText is sent when a swept payment ends unsuccessfully.
func PaymentVoidText() string { return msgPaymentFailedOrVoid }

// PaymentAcceptedText is sent by the poller when the order was confirmed elsewhere.
func PaymentAcceptedText() string { return msgPaymentAccepted }

func orderConfirmedText(o model.Order) string {
	return fmt.Sprintf("✅ Оплата заказа #%d прошла успешно\n\n"+
		"📦 Заказ оформлен. Ожидайте, когда администратор начнет обработку.\n"+
		"Когда появится ссылка для отслеживания — мы сообщим.\n\n"+
		"Вы можете смотреть статус в разделе «📦 Мои заказы».", o.Number)
}

func orderAlreadyConfirmedText(o model.Order) string {
	return fmt.Sprintf("✅ Оплата заказа #%d прошла успешно", o.Number)
}

func adminNewOrderText(o model.Order) string {
	var lines []string
	for i, it := range o.Items {
		if i == adminSummaryLimit {
			lines = append(lines, fmt.Sprintf("… ещё %d поз.", len(o.Items)-adminSummaryLimit))
			break
		}
		lines = append(lines, fmt.Sprintf("• %s × %d", orDash(it.Name), it.Quantity))
	}
	items := adminSummaryPlaceholder
	if len(lines) > 0 {
		items = strings.Join(lines, "\n")
	}

	delivery := "-"
	if o.Delivery != nil && *o.Delivery != "" {
		delivery = *o.Delivery
	}

	return "🆕 Новый оплаченный заказ\n\n" +
		fmt.Sprintf("🧾 Заказ #%d\n", o.Number) +
		fmt.Sprintf("💰 Сумма: %s ₽\n", o.Total.StringFixed(2)) +
		fmt.Sprintf("🚚 Доставка: %s\n", delivery) +
		fmt.Sprintf("📍 Адрес: %s\n\n", orDash(o.Address)) +
		fmt.Sprintf("👤 Клиент: @%s (ID %d)\n\n", o.Customer.Username, o.UserID) +
		"📦 Товары:\n" + items
}

func thresholdText(ev model.ThresholdEvent) string {
	if ev.Kind == model.ThresholdOut {
		return "⛔ Товар закончился\n\n" +
			fmt.Sprintf("💊 %s\n", orDash(ev.Product.Name)) +
			fmt.Sprintf("🆔 ID: %d", ev.Product.ID)
	}
	return "⚠️ Мало товара\n\n" +
		fmt.Sprintf("💊 %s\n", orDash(ev.Product.Name)) +
		fmt.Sprintf("📦 Осталось: %d шт\n", ev.Product.Stock) +
		fmt.Sprintf("🆔 ID: %d", ev.Product.ID)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
