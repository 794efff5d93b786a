package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePayload(eventType string) map[string]any {
	return map[string]any{
		"sessionId": "sess-1",
		"eventType": eventType,
		"timestamp": "2025-06-01T10:00:00Z",
	}
}

func TestNormalizeEvent_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"sessionId", "eventType", "timestamp"} {
		payload := basePayload("click")
		delete(payload, field)

		event, err := NormalizeEvent(payload)

		assert.Nil(t, event)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, field, vErr.Field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestNormalizeEvent_StampsBaseFields(t *testing.T) {
	payload := basePayload("click")
	payload["elementId"] = "buy-button"
	payload["elementTag"] = "button"
	payload["url"] = "http://localhost:3000/store"
	payload["userAgent"] = "test-agent"

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	base := event.Base()
	assert.Equal(t, "sess-1", base.SessionID)
	assert.Equal(t, "click", base.EventType)
	assert.Equal(t, "2025-06-01T10:00:00Z", base.Timestamp)
	assert.Equal(t, "buy-button", base.ElementID)
	assert.Equal(t, "button", base.ElementTag)
	assert.Equal(t, "http://localhost:3000/store", base.URL)
	assert.Equal(t, "test-agent", base.UserAgent)

	assert.NotEmpty(t, base.EventID)
	_, err = time.Parse(time.RFC3339, base.ReceivedAt)
	assert.NoError(t, err)
}

func TestNormalizeEvent_EventIDsAreUnique(t *testing.T) {
	first, err := NormalizeEvent(basePayload("click"))
	require.NoError(t, err)
	second, err := NormalizeEvent(basePayload("click"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Base().EventID, second.Base().EventID)
}

func TestNormalizeEvent_Click(t *testing.T) {
	payload := basePayload("click")
	payload["action"] = "add_to_cart"
	payload["productId"] = "p1"
	payload["productName"] = "Hoodie"
	payload["productPrice"] = 39.99
	payload["clickX"] = 120.0
	payload["clickY"] = 340.0

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	click, ok := event.(*ClickEvent)
	require.True(t, ok)
	assert.Equal(t, "add_to_cart", click.Action)
	assert.Equal(t, "p1", click.ProductID)
	assert.Equal(t, "Hoodie", click.ProductName)
	require.NotNil(t, click.ProductPrice)
	assert.Equal(t, 39.99, *click.ProductPrice)
	require.NotNil(t, click.ClickX)
	assert.Equal(t, 120.0, *click.ClickX)
}

func TestNormalizeEvent_ConversionRequiresTotal(t *testing.T) {
	event, err := NormalizeEvent(basePayload("conversion"))

	assert.Nil(t, event)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "total", vErr.Field)
}

func TestNormalizeEvent_ConversionDefaults(t *testing.T) {
	payload := basePayload("conversion")
	payload["total"] = 89.5

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	conv, ok := event.(*ConversionEvent)
	require.True(t, ok)
	assert.Equal(t, "checkout_completed", conv.Action)
	assert.Equal(t, 89.5, conv.Total)
	assert.Equal(t, 0, conv.ItemCount)
	assert.NotNil(t, conv.ItemsDetail)
	assert.Empty(t, conv.ItemsDetail)
}

func TestNormalizeEvent_ConversionItems(t *testing.T) {
	payload := basePayload("conversion")
	payload["total"] = 120.0
	payload["itemCount"] = 3.0
	payload["itemsDetail"] = []any{
		map[string]any{"id": "p1", "name": "Hoodie", "price": 40.0, "quantity": 2.0},
		map[string]any{"id": "p2", "name": "Sticker"},
	}

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	conv := event.(*ConversionEvent)
	require.Len(t, conv.ItemsDetail, 2)
	assert.Equal(t, 2, conv.ItemsDetail[0].Quantity)
	assert.Equal(t, 40.0, conv.ItemsDetail[0].Price)
	// Quantity defaults to 1 when the client leaves it out.
	assert.Equal(t, 1, conv.ItemsDetail[1].Quantity)
	assert.Equal(t, 3, conv.ItemCount)
}

func TestNormalizeEvent_FormSubmitDefaults(t *testing.T) {
	event, err := NormalizeEvent(basePayload("form_submit"))
	require.NoError(t, err)

	form, ok := event.(*FormSubmitEvent)
	require.True(t, ok)
	assert.True(t, form.IsValid)
	assert.NotNil(t, form.Errors)
	assert.Empty(t, form.Errors)
	assert.Nil(t, form.FieldCount)
}

func TestNormalizeEvent_FormSubmitExplicitInvalid(t *testing.T) {
	payload := basePayload("form_submit")
	payload["isValid"] = false
	payload["errors"] = []any{"email required"}
	payload["fieldCount"] = 4.0

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	form := event.(*FormSubmitEvent)
	assert.False(t, form.IsValid)
	assert.Equal(t, []string{"email required"}, form.Errors)
	require.NotNil(t, form.FieldCount)
	assert.Equal(t, 4, *form.FieldCount)
}

func TestNormalizeEvent_UnknownTypeKeepsBaseFieldsOnly(t *testing.T) {
	payload := basePayload("scroll_depth")
	payload["depth"] = 0.75

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	base, ok := event.(*BaseEvent)
	require.True(t, ok)
	assert.Equal(t, "scroll_depth", base.EventType)

	// The unrecognized extension field must not leak into storage.
	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "depth")
}

func TestNormalizeEvent_AbsentOptionalFieldsAreOmitted(t *testing.T) {
	event, err := NormalizeEvent(basePayload("click"))
	require.NoError(t, err)

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	for _, key := range []string{"elementId", "url", "userAgent", "action", "productId", "productPrice", "clickX", "clickY"} {
		assert.NotContains(t, stored, key)
	}
	for _, key := range []string{"sessionId", "eventType", "timestamp", "receivedAt", "eventId"} {
		assert.Contains(t, stored, key)
	}
	for _, value := range stored {
		assert.NotNil(t, value)
	}
}

func TestNormalizeEvent_DefaultedFieldsSurviveSerialization(t *testing.T) {
	payload := basePayload("conversion")
	payload["total"] = 10.0

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Contains(t, stored, "itemCount")
	assert.Contains(t, stored, "itemsDetail")
	assert.Contains(t, stored, "action")
	assert.Contains(t, stored, "total")
}

func TestNormalizeEvent_Navigation(t *testing.T) {
	payload := basePayload("navigation")
	payload["action"] = "navigate"
	payload["fromPath"] = "/store"
	payload["toPath"] = "/store/cart"
	payload["navigationType"] = "click"

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	nav, ok := event.(*NavigationEvent)
	require.True(t, ok)
	assert.Equal(t, "/store", nav.FromPath)
	assert.Equal(t, "/store/cart", nav.ToPath)
	assert.Equal(t, "click", nav.NavigationType)
}

func TestNormalizeEvent_PageView(t *testing.T) {
	payload := basePayload("page_view")
	payload["path"] = "/store/browse"
	payload["referrer"] = "/store"
	payload["loadTime"] = 312.0

	event, err := NormalizeEvent(payload)
	require.NoError(t, err)

	view, ok := event.(*PageViewEvent)
	require.True(t, ok)
	assert.Equal(t, "/store/browse", view.Path)
	require.NotNil(t, view.LoadTime)
	assert.Equal(t, 312.0, *view.LoadTime)
	assert.Equal(t, "/store", view.Referrer)
}
