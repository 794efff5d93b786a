package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emanchez/analytics-app/database"
	"github.com/emanchez/analytics-app/models"
)

const (
	sessionsCollection    = "sessions"
	conversionsCollection = "conversions"
	pageViewsCollection   = "page_views"
	productsCollection    = "products"

	sessionMetadataKey = "metadata"
	topProductsLimit   = 5
)

// AnalyticsStore persists normalized events and answers the read-only
// aggregation queries. Reads recompute from the stored documents on
// every call; there is no cache, so each read scans O(n) documents.
type AnalyticsStore struct {
	DB  database.DocumentStore
	log *zap.Logger
}

func NewAnalyticsStore(db database.DocumentStore, log *zap.Logger) *AnalyticsStore {
	return &AnalyticsStore{
		DB:  db,
		log: log,
	}
}

// StoreEvent runs the full write pipeline for one normalized event: the
// per-session event log entry, the session metadata upsert, the product
// analytics upsert, and the type-specific side copy. The steps are not
// transactional; the first failure aborts the remainder and earlier
// writes stay committed.
func (s *AnalyticsStore) StoreEvent(ctx context.Context, event models.Event) error {
	base := event.Base()

	// The session id is client-supplied; flatten it to one path
	// component so it cannot add hierarchy levels under sessions/.
	sessionKey, err := database.SanitizeKey(base.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", base.SessionID, err)
	}

	eventsCollection := sessionsCollection + "/" + sessionKey + "/events"
	if err := s.DB.Put(ctx, eventsCollection, base.EventID, event); err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	if err := s.upsertSession(ctx, sessionKey, base); err != nil {
		return fmt.Errorf("failed to update session metadata: %w", err)
	}

	if err := s.upsertProducts(ctx, event); err != nil {
		return fmt.Errorf("failed to update product analytics: %w", err)
	}

	// Conversions and page views get an independent copy in a flat
	// collection so the list endpoints can enumerate them without
	// walking every session.
	switch event.(type) {
	case *models.ConversionEvent:
		if err := s.DB.Put(ctx, conversionsCollection, uuid.NewString(), event); err != nil {
			return fmt.Errorf("failed to store conversion record: %w", err)
		}
	case *models.PageViewEvent:
		if err := s.DB.Put(ctx, pageViewsCollection, uuid.NewString(), event); err != nil {
			return fmt.Errorf("failed to store page view record: %w", err)
		}
	}

	s.log.Debug("Event stored",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.String("session_id", base.SessionID))
	return nil
}

// upsertSession creates the metadata record on a session's first event
// and bumps the counters on every one after that. startTime, userAgent
// and firstUrl are creation-time fields; events after the first never
// touch them, even when the first event left them empty. The
// read-modify-write runs under the store's per-document lock.
func (s *AnalyticsStore) upsertSession(ctx context.Context, sessionKey string, base *models.BaseEvent) error {
	collection := sessionsCollection + "/" + sessionKey
	return s.DB.Update(ctx, collection, sessionMetadataKey, func(raw []byte) (any, error) {
		var meta models.SessionMeta
		if raw == nil {
			meta = models.SessionMeta{
				SessionID: base.SessionID,
				StartTime: base.Timestamp,
				UserAgent: base.UserAgent,
				FirstURL:  base.URL,
			}
		} else if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode session metadata: %w", err)
		}
		meta.EventCount++
		meta.LastActivity = base.ReceivedAt
		meta.LastURL = base.URL
		return meta, nil
	})
}

func (s *AnalyticsStore) upsertProducts(ctx context.Context, event models.Event) error {
	switch e := event.(type) {
	case *models.ClickEvent:
		if e.ProductID == "" || e.ProductName == "" {
			return nil
		}
		var price float64
		if e.ProductPrice != nil {
			price = *e.ProductPrice
		}
		return s.upsertProduct(ctx, e.ProductID, e.ProductName, price, e.ReceivedAt,
			func(c *models.ProductCounters) {
				// Substring match on the action decides which counter
				// moves; exactly one per event, views checked first.
				switch {
				case strings.Contains(e.Action, "view"):
					c.Views++
				case strings.Contains(e.Action, "add_to_cart"):
					c.AddToCarts++
				default:
					c.Clicks++
				}
			})

	case *models.ConversionEvent:
		// A conversion fans out over its line items; every purchased
		// product updates its own record.
		for _, item := range e.ItemsDetail {
			if item.ID == "" {
				continue
			}
			qty := item.Quantity
			err := s.upsertProduct(ctx, item.ID, item.Name, item.Price, e.ReceivedAt,
				func(c *models.ProductCounters) {
					c.Purchases += qty
				})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *AnalyticsStore) upsertProduct(ctx context.Context, id, name string, price float64, seenAt string, bump func(*models.ProductCounters)) error {
	return s.DB.Update(ctx, productsCollection, id, func(raw []byte) (any, error) {
		product := models.ProductAnalytics{
			ID:    id,
			Name:  name,
			Price: price,
			Analytics: models.ProductCounters{
				FirstSeen: seenAt,
			},
		}
		if raw != nil {
			if err := json.Unmarshal(raw, &product); err != nil {
				return nil, fmt.Errorf("failed to decode product record %s: %w", id, err)
			}
		}
		bump(&product.Analytics)
		product.Analytics.LastSeen = seenAt
		return product, nil
	})
}

// ListConversions enumerates every stored conversion record.
func (s *AnalyticsStore) ListConversions(ctx context.Context) ([]models.ConversionEvent, error) {
	raws, err := s.DB.List(ctx, conversionsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	conversions := make([]models.ConversionEvent, 0, len(raws))
	for _, raw := range raws {
		var conv models.ConversionEvent
		if err := json.Unmarshal(raw, &conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversion record: %w", err)
		}
		conversions = append(conversions, conv)
	}
	return conversions, nil
}

// ListSessions enumerates the metadata record of every known session.
func (s *AnalyticsStore) ListSessions(ctx context.Context) ([]models.SessionMeta, error) {
	ids, err := s.DB.Keys(ctx, sessionsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := make([]models.SessionMeta, 0, len(ids))
	for _, id := range ids {
		var meta models.SessionMeta
		err := s.DB.Get(ctx, sessionsCollection+"/"+id, sessionMetadataKey, &meta)
		if err == database.ErrNotFound {
			// A session directory without a metadata record; skip it
			// rather than fail the whole listing.
			s.log.Warn("Session has no metadata record", zap.String("session_id", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read session %s: %w", id, err)
		}
		sessions = append(sessions, meta)
	}
	return sessions, nil
}

// ListProducts enumerates every product analytics record, product id
// ascending.
func (s *AnalyticsStore) ListProducts(ctx context.Context) ([]models.ProductAnalytics, error) {
	raws, err := s.DB.List(ctx, productsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]models.ProductAnalytics, 0, len(raws))
	for _, raw := range raws {
		var product models.ProductAnalytics
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, fmt.Errorf("failed to decode product record: %w", err)
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// DashboardSummary recomputes the aggregate view from all stored
// records. Top products rank descending by engagement score; ties keep
// product id ascending order so results are reproducible.
func (s *AnalyticsStore) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	sessionIDs, err := s.DB.Keys(ctx, sessionsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	conversions, err := s.ListConversions(ctx)
	if err != nil {
		return nil, err
	}
	var revenue float64
	for _, conv := range conversions {
		revenue += conv.Total
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].EngagementScore() > products[j].EngagementScore()
	})
	if len(products) > topProductsLimit {
		products = products[:topProductsLimit]
	}

	return &models.DashboardSummary{
		TotalSessions:    len(sessionIDs),
		TotalConversions: len(conversions),
		TotalRevenue:     revenue,
		TopProducts:      products,
	}, nil
}
