package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports a required field the client left out of an
// event payload. Handlers translate it into a 400 response.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// NormalizeEvent shapes an arbitrary client payload into a canonical
// typed event. It enforces the required base fields, stamps receivedAt
// and a fresh eventId, and copies the per-type optional fields verbatim.
// Unrecognized event types are accepted with only the base fields set.
func NormalizeEvent(payload map[string]any) (Event, error) {
	for _, field := range []string{"sessionId", "eventType", "timestamp"} {
		if stringField(payload, field) == "" {
			return nil, &ValidationError{Field: field}
		}
	}

	base := BaseEvent{
		SessionID:  stringField(payload, "sessionId"),
		EventType:  stringField(payload, "eventType"),
		Timestamp:  stringField(payload, "timestamp"),
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		EventID:    uuid.NewString(),
		ElementID:  stringField(payload, "elementId"),
		ElementTag: stringField(payload, "elementTag"),
		URL:        stringField(payload, "url"),
		UserAgent:  stringField(payload, "userAgent"),
	}

	switch base.EventType {
	case "click":
		return &ClickEvent{
			BaseEvent:    base,
			Action:       stringField(payload, "action"),
			ProductID:    stringField(payload, "productId"),
			ProductName:  stringField(payload, "productName"),
			ProductPrice: floatField(payload, "productPrice"),
			ClickX:       floatField(payload, "clickX"),
			ClickY:       floatField(payload, "clickY"),
		}, nil

	case "conversion":
		total := floatField(payload, "total")
		if total == nil {
			return nil, &ValidationError{Field: "total"}
		}
		action := stringField(payload, "action")
		if action == "" {
			action = "checkout_completed"
		}
		return &ConversionEvent{
			BaseEvent:      base,
			Action:         action,
			Total:          *total,
			ItemCount:      intField(payload, "itemCount"),
			PromoCodeUsed:  stringField(payload, "promoCodeUsed"),
			ItemsDetail:    itemsField(payload, "itemsDetail"),
			PaymentMethod:  stringField(payload, "paymentMethod"),
			ShippingMethod: stringField(payload, "shippingMethod"),
		}, nil

	case "page_view":
		return &PageViewEvent{
			BaseEvent: base,
			Path:      stringField(payload, "path"),
			Referrer:  stringField(payload, "referrer"),
			Title:     stringField(payload, "title"),
			LoadTime:  floatField(payload, "loadTime"),
			Viewport:  stringField(payload, "viewport"),
		}, nil

	case "form_submit":
		return &FormSubmitEvent{
			BaseEvent:  base,
			FormID:     stringField(payload, "formId"),
			FormName:   stringField(payload, "formName"),
			Action:     stringField(payload, "action"),
			FieldCount: intFieldPtr(payload, "fieldCount"),
			IsValid:    boolField(payload, "isValid", true),
			Errors:     stringsField(payload, "errors"),
		}, nil

	case "navigation":
		return &NavigationEvent{
			BaseEvent:      base,
			Action:         stringField(payload, "action"),
			FromPath:       stringField(payload, "fromPath"),
			ToPath:         stringField(payload, "toPath"),
			NavigationType: stringField(payload, "navigationType"),
		}, nil
	}

	return &base, nil
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// floatField returns nil when the key is absent or not numeric, so
// callers can distinguish "not sent" from an explicit zero.
func floatField(payload map[string]any, key string) *float64 {
	switch v := payload[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func intField(payload map[string]any, key string) int {
	if f := floatField(payload, key); f != nil {
		return int(*f)
	}
	return 0
}

func intFieldPtr(payload map[string]any, key string) *int {
	if f := floatField(payload, key); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

func boolField(payload map[string]any, key string, fallback bool) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return fallback
}

func stringsField(payload map[string]any, key string) []string {
	out := []string{}
	if raw, ok := payload[key].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// itemsField decodes the conversion line items. Quantity defaults to 1
// when absent so a bare {id} entry still counts as one purchase.
func itemsField(payload map[string]any, key string) []ConversionItem {
	items := []ConversionItem{}
	raw, ok := payload[key].([]any)
	if !ok {
		return items
	}
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := ConversionItem{
			ID:       stringField(m, "id"),
			Name:     stringField(m, "name"),
			Quantity: 1,
		}
		if price := floatField(m, "price"); price != nil {
			item.Price = *price
		}
		if qty := floatField(m, "quantity"); qty != nil {
			item.Quantity = int(*qty)
		}
		items = append(items, item)
	}
	return items
}
