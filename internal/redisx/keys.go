package redisx

import "time"

const (
	// Cached order status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%d"

	// Phase mutual exclusion: lock:phase:{task_kind}:{id}
	KeyPhaseLock = "lock:phase:%s:%s"

	// ZSET of serialized tasks scored by due time (unix millis).
	KeyDelayedTasks = "tasks:delayed"

	// KPI hash per day: kpi:{yyyy-mm-dd} -> revenue, order_count, avg_order_value
	KeyKPIDay = "kpi:%s"

	// Customer leaderboard ZSET scored by lifetime finalized total.
	KeyLeaderboard = "leaderboard:customers"
)

var TTLStatusCache = 5 * time.Minute
