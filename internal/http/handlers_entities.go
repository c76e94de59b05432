package http

import (
	"net/http"

	"fishmarket/internal/core"
)

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req entityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	customer, err := s.svc.CreateCustomer(r.Context(),
		sanitizeInput(req.Name), sanitizeInput(req.Phone), sanitizeInput(req.Address))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerToResponse(customer))
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	customer, err := s.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(customer))
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	customer, err := s.svc.UpdateCustomer(r.Context(), id,
		sanitizeInput(req.Name), sanitizeInput(req.Phone), sanitizeInput(req.Address))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(customer))
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)
	search := sanitizeInput(r.URL.Query().Get("q"))

	page, err := s.svc.ListCustomers(r.Context(), search, offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := core.Paginated[entityResponse]{
		Items:  make([]entityResponse, len(page.Items)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for i := range page.Items {
		out.Items[i] = customerToResponse(&page.Items[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCustomerBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.GetCustomer(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.DeriveBalance(r.Context(), core.EntityCustomer, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{EntityID: id, Kind: string(core.EntityCustomer), Balance: balance})
}

func (s *Server) handleCreateFarmer(w http.ResponseWriter, r *http.Request) {
	var req entityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	farmer, err := s.svc.CreateFarmer(r.Context(),
		sanitizeInput(req.Name), sanitizeInput(req.Phone), sanitizeInput(req.Address))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, farmerToResponse(farmer))
}

func (s *Server) handleGetFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	farmer, err := s.svc.GetFarmer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, farmerToResponse(farmer))
}

func (s *Server) handleUpdateFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	farmer, err := s.svc.UpdateFarmer(r.Context(), id,
		sanitizeInput(req.Name), sanitizeInput(req.Phone), sanitizeInput(req.Address))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, farmerToResponse(farmer))
}

func (s *Server) handleListFarmers(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)
	search := sanitizeInput(r.URL.Query().Get("q"))

	page, err := s.svc.ListFarmers(r.Context(), search, offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := core.Paginated[entityResponse]{
		Items:  make([]entityResponse, len(page.Items)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for i := range page.Items {
		out.Items[i] = farmerToResponse(&page.Items[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFarmerBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.GetFarmer(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.DeriveBalance(r.Context(), core.EntityFarmer, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{EntityID: id, Kind: string(core.EntityFarmer), Balance: balance})
}
