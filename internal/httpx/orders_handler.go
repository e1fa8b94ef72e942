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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/importer"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/kpi"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/notify"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/redisx"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

type OrdersHandler struct {
	Repo    *orders.Repo
	Bus     tasks.Dispatcher
	Redis   *redis.Client
	KPI     *kpi.Store
	Service string
	Log     *zap.Logger
}

type ImportResp struct {
	ImportBatch string `json:"import_batch"`
	Groups      int    `json:"groups"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/imports", h.importOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/refund", h.refundOrder)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// importOrders takes a CSV body, groups rows by order_number, and
// dispatches one import task per group. Re-posting the same file with the
// same X-Import-Batch header is idempotent.
func (h *OrdersHandler) importOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	batch := r.Header.Get("X-Import-Batch")
	if batch == "" {
		batch = uuid.NewString()
	} else if _, err := uuid.Parse(batch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-Import-Batch must be a uuid"})
		return
	}

	groups, err := importer.ParseGroups(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(groups) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no rows"})
		return
	}

	for orderNumber, rows := range groups {
		t := tasks.New(tasks.KindImport, orderNumber, h.Service, tasks.ImportPayload{
			ImportBatch: batch,
			Rows:        rows,
		})
		if err := h.Bus.Dispatch(ctx, t); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	h.Log.Info("import dispatched", zap.String("import_batch", batch), zap.Int("groups", len(groups)))
	writeJSON(w, http.StatusAccepted, ImportResp{ImportBatch: batch, Groups: len(groups)})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	status, err := h.Repo.GetStatus(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	body := map[string]any{"status": status}
	b, _ := json.Marshal(body)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type RefundReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// refundOrder is the revenue-adjustment hook: it backs the amount out of
// the KPI counters and records a refund notification. The full refund
// workflow lives elsewhere.
func (h *OrdersHandler) refundOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req RefundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.Get(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if o.Status != orders.StatusFinalized {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "only finalized orders can be refunded"})
		return
	}

	if err := h.KPI.ApplyRefund(ctx, o, req.Amount); err != nil {
		h.Log.Error("kpi refund adjustment failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
	t := tasks.New(tasks.KindNotify, strconv.FormatInt(o.ID, 10), h.Service, tasks.NotifyPayload{
		OrderID: o.ID,
		Type:    notify.TypeRefund,
		Extra:   map[string]any{"refund_amount": req.Amount},
	})
	if err := h.Bus.Dispatch(ctx, t); err != nil {
		h.Log.Error("refund notification dispatch failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"order_id": o.ID, "refund_amount": req.Amount})
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
