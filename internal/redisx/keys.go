package redisx

import "time"

const (
	// Session token -> user id: session:{token}
	KeySession = "session:%s"

	// Cached order status, scoped to the owner so a warm cache can never
	// serve another user's order: order_status:{user_id}:{order_id}
	KeyOrderStatus = "order_status:%d:%d"

	// Event dedup: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
