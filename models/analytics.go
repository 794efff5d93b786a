package models

// SessionMeta is the single metadata record kept per session. It is
// rewritten wholesale on every event belonging to the session.
type SessionMeta struct {
	SessionID    string `json:"sessionId"`
	StartTime    string `json:"startTime"`
	EventCount   int    `json:"eventCount"`
	UserAgent    string `json:"userAgent,omitempty"`
	FirstURL     string `json:"firstUrl,omitempty"`
	LastActivity string `json:"lastActivity"`
	LastURL      string `json:"lastUrl,omitempty"`
}

// ProductCounters holds the per-product engagement tallies. Counters
// only ever increase.
type ProductCounters struct {
	Views      int    `json:"views"`
	Clicks     int    `json:"clicks"`
	AddToCarts int    `json:"addToCarts"`
	Purchases  int    `json:"purchases"`
	FirstSeen  string `json:"firstSeen"`
	LastSeen   string `json:"lastSeen"`
}

// ProductAnalytics is the aggregate record kept per product id.
type ProductAnalytics struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Analytics ProductCounters `json:"analytics"`
}

// EngagementScore ranks products for the dashboard top list. Purchases
// are deliberately excluded; the list measures engagement, not revenue.
func (p ProductAnalytics) EngagementScore() int {
	return p.Analytics.Views + p.Analytics.Clicks + p.Analytics.AddToCarts
}

// DashboardSummary is the derived aggregate served by the dashboard
// endpoint, recomputed from the stored records on every call.
type DashboardSummary struct {
	TotalSessions    int                `json:"totalSessions"`
	TotalConversions int                `json:"totalConversions"`
	TotalRevenue     float64            `json:"totalRevenue"`
	TopProducts      []ProductAnalytics `json:"topProducts"`
}

// MerchItem mirrors one entry of the merchandise catalog file served by
// the /api/get-merch passthrough.
type MerchItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImgURI      string  `json:"imgUri"`
	Available   bool    `json:"available"`
	Quantity    int     `json:"quantity"`
	IsFeatured  bool    `json:"isFeatured"`
	Category    string  `json:"category"`
}
