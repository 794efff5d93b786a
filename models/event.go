package models

// BaseEvent carries the fields shared by every tracked event. Optional
// passthrough fields are omitted from the stored JSON when the client
// did not send them.
type BaseEvent struct {
	SessionID  string `json:"sessionId"`
	EventType  string `json:"eventType"`
	Timestamp  string `json:"timestamp"`
	ReceivedAt string `json:"receivedAt"`
	EventID    string `json:"eventId"`
	ElementID  string `json:"elementId,omitempty"`
	ElementTag string `json:"elementTag,omitempty"`
	URL        string `json:"url,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
}

// Base lets BaseEvent satisfy Event, so every concrete event type
// inherits the implementation through embedding.
func (b *BaseEvent) Base() *BaseEvent { return b }

// Event is the union over all event kinds. Concrete types are selected
// by eventType during normalization; unrecognized types are carried as a
// bare *BaseEvent.
type Event interface {
	Base() *BaseEvent
}

// ClickEvent records a click interaction, optionally tied to a product.
type ClickEvent struct {
	BaseEvent
	Action       string   `json:"action,omitempty"`
	ProductID    string   `json:"productId,omitempty"`
	ProductName  string   `json:"productName,omitempty"`
	ProductPrice *float64 `json:"productPrice,omitempty"`
	ClickX       *float64 `json:"clickX,omitempty"`
	ClickY       *float64 `json:"clickY,omitempty"`
}

// ConversionItem is one purchased line item inside a conversion.
type ConversionItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ConversionEvent records a completed checkout. Action, itemCount and
// itemsDetail are always present (defaulted during normalization);
// total is required by the normalizer.
type ConversionEvent struct {
	BaseEvent
	Action         string           `json:"action"`
	Total          float64          `json:"total"`
	ItemCount      int              `json:"itemCount"`
	PromoCodeUsed  string           `json:"promoCodeUsed,omitempty"`
	ItemsDetail    []ConversionItem `json:"itemsDetail"`
	PaymentMethod  string           `json:"paymentMethod,omitempty"`
	ShippingMethod string           `json:"shippingMethod,omitempty"`
}

// PageViewEvent records a page load.
type PageViewEvent struct {
	BaseEvent
	Path     string   `json:"path,omitempty"`
	Referrer string   `json:"referrer,omitempty"`
	Title    string   `json:"title,omitempty"`
	LoadTime *float64 `json:"loadTime,omitempty"`
	Viewport string   `json:"viewport,omitempty"`
}

// FormSubmitEvent records a form submission. IsValid defaults to true
// and errors to an empty list, so both always serialize.
type FormSubmitEvent struct {
	BaseEvent
	FormID     string   `json:"formId,omitempty"`
	FormName   string   `json:"formName,omitempty"`
	Action     string   `json:"action,omitempty"`
	FieldCount *int     `json:"fieldCount,omitempty"`
	IsValid    bool     `json:"isValid"`
	Errors     []string `json:"errors"`
}

// NavigationEvent records an in-app route change.
type NavigationEvent struct {
	BaseEvent
	Action         string `json:"action,omitempty"`
	FromPath       string `json:"fromPath,omitempty"`
	ToPath         string `json:"toPath,omitempty"`
	NavigationType string `json:"navigationType,omitempty"`
}
