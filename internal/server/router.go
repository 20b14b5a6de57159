package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	adjcontroller "posterminal/internal/adjustment/controller"
	cartcontroller "posterminal/internal/cart/controller"
	checkoutcontroller "posterminal/internal/checkout/controller"
	"posterminal/internal/commons"
	invcontroller "posterminal/internal/inventory/controller"
)

type Metrics interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	Handler() http.Handler
}

type Controllers struct {
	Cart       *cartcontroller.CartController
	Checkout   *checkoutcontroller.CheckoutController
	Adjustment *adjcontroller.AdjustmentController
	Inventory  *invcontroller.InventoryController
}

func NewRouter(ctrls Controllers, metrics Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument(metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/products", ctrls.Inventory.Catalog)
		r.Get("/inventory/overview", ctrls.Inventory.Overview)

		r.Post("/sessions", ctrls.Cart.CreateSession)
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Get("/cart", ctrls.Cart.GetCart)
			r.Delete("/cart", ctrls.Cart.ClearCart)
			r.Post("/cart/items", ctrls.Cart.AddItem)
			r.Patch("/cart/items/{productId}", ctrls.Cart.ChangeQuantity)
			r.Delete("/cart/items/{productId}", ctrls.Cart.RemoveItem)
			r.Put("/cart/discount", ctrls.Cart.SetDiscount)

			r.Post("/checkout", ctrls.Checkout.Checkout)
			r.Get("/checkout", ctrls.Checkout.Status)

			r.Post("/adjustments", ctrls.Adjustment.Adjust)
			r.Post("/transfers", ctrls.Adjustment.Transfer)
		})
	})

	return r
}

// instrument records every request under its route pattern, so
// /sessions/abc/cart and /sessions/xyz/cart share one series.
func instrument(metrics Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}
