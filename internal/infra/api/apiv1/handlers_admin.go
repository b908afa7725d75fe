package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.d.Stats.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverview(o))
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	rows, err := s.d.Stats.RevenueByPlan(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toPlanRevenue(rows)})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	rows, total, err := s.d.Stats.Transactions(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       toTransactions(rows),
		"pagination": paginationFor(page, total),
	})
}

func (s *Server) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	rows, err := s.d.Coupons.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toCoupons(rows)})
}

func (s *Server) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponCreateRequest
	if !s.decode(w, r, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	c, err := s.d.Coupons.Create(r.Context(), req.Code, req.DiscountPercentage, req.ExpiryDate, active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCoupon(c))
}

func (s *Server) handleCouponActive(w http.ResponseWriter, r *http.Request) {
	var req CouponActiveRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.d.Coupons.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCoupon(c))
}
