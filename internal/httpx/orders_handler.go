package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/domain"
	kafkax "github.com/Keiter0309/EcomGrove/internal/kafka"
	"github.com/Keiter0309/EcomGrove/internal/orders"
	"github.com/Keiter0309/EcomGrove/internal/redisx"
)

// EventPublisher is what the handler needs from a kafka producer.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Svc       *orders.Service
	Created   EventPublisher // order.created
	Cancelled EventPublisher // order.cancelled
	Redis     *redis.Client  // optional status cache
	Service   string
	Log       *zap.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders/checkout", h.checkout)
	r.Get("/orders", h.findAll)
	r.Get("/orders/{id}", h.findOne)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Post("/orders/{id}/cancel", h.cancel)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Svc.Checkout(ctx, userFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}

	for _, o := range created {
		h.cacheStatus(ctx, o.UserID, o.ID, o.Status)
		h.publish(h.Created, r, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			ProductID:   o.ProductID,
			Quantity:    o.Quantity,
			TotalAmount: o.TotalAmount,
		})
	}
	respond(w, http.StatusCreated, "Orders created successfully", created)
}

type ordersPageResp struct {
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalItems  int            `json:"totalItems"`
	Orders      []domain.Order `json:"orders"`
}

func (h *OrdersHandler) findAll(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.FindAll(ctx, userFrom(r), page, limit)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusOK, "Fetched order data successfully", ordersPageResp{
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
		TotalItems:  p.Total,
		Orders:      p.Orders,
	})
}

func (h *OrdersHandler) findOne(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid order id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.FindOne(ctx, id, userFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respond(w, http.StatusOK, "Fetched order successfully", o)
}

// getStatus serves from the redis cache when warm and falls back to the
// database, refreshing the cache on the way out. The cache key carries the
// requesting user, so a warm entry only ever answers for the order's owner.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid order id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, userFrom(r), id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Svc.FindOne(ctx, id, userFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.cacheStatus(ctx, o.UserID, o.ID, o.Status)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, h.Log, domain.Errorf(domain.EINVALID, "invalid order id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Cancel(ctx, id, userFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}

	h.cacheStatus(ctx, o.UserID, o.ID, o.Status)
	h.publish(h.Cancelled, r, orders.EventOrderCancelled, o.ID, orders.OrderCancelledPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		ProductID:     o.ProductID,
		QuantityFreed: o.Quantity,
	})
	respond(w, http.StatusOK, "Order cancelled successfully", o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, userID, orderID int64, status domain.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	body, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(p EventPublisher, r *http.Request, eventType string, orderID int64, payload any) {
	if p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(orderID, 10),
	}
	ev.Payload = kafkax.MustMarshal(payload)
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
