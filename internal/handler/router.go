package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router builds the API route tree. Catalog reads are public; cart and order
// routes require authentication; mutation of the catalog, user listing, and
// order administration require the admin role.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireAdmin)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireAdmin)
			r.Post("/", h.CreateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{productId}", h.UpdateCartItem)
		r.Delete("/items/{productId}", h.RemoveCartItem)
		r.Delete("/", h.ClearCart)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Post("/", h.PlaceOrder)
		r.Get("/my", h.ListMyOrders)
		r.Get("/{id}", h.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Get("/", h.ListOrders)
			r.Put("/{id}/status", h.UpdateOrderStatus)
			r.Put("/{id}/payment-status", h.UpdatePaymentStatus)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate, h.RequireAdmin)
		r.Get("/users", h.ListUsers)
	})

	return r
}
