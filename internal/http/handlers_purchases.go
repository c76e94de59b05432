package http

import (
	"net/http"
	"strconv"

	"fishmarket/internal/core"
	"fishmarket/internal/ledger"
	"fishmarket/internal/storage"
)

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ledger.PurchaseInput{
		FarmerID:          req.FarmerID,
		Time:              sanitizeInput(req.Time),
		FishName:          sanitizeInput(req.FishName),
		WeightKg:          req.WeightKg,
		PricePerUnit:      req.PricePerUnit,
		CommissionPercent: req.CommissionPercent,
		HandlingCharges:   req.HandlingCharges,
		IceCharges:        req.IceCharges,
		LabourCharges:     req.LabourCharges,
		ExtraCharges:      req.ExtraCharges,
		PaidAmount:        req.PaidAmount,
		Notes:             sanitizeInput(req.Notes),
	}
	if req.Date != "" {
		date, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.Date = date
	}

	purchase, err := s.svc.RecordPurchase(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchaseToResponse(purchase))
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	purchase, err := s.svc.GetPurchase(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseToResponse(purchase))
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	var filter storage.PurchaseFilter
	if v := r.URL.Query().Get("farmer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, core.Invalid("farmer_id", "must be an integer"))
			return
		}
		filter.FarmerID = id
	}
	if v := r.URL.Query().Get("date"); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Date = date.String()
	}

	page, err := s.svc.ListPurchases(r.Context(), filter, offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := core.Paginated[purchaseResponse]{
		Items:  make([]purchaseResponse, len(page.Items)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for i := range page.Items {
		out.Items[i] = purchaseToResponse(&page.Items[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req purchaseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ledger.UpdatePurchaseInput{PaidAmount: req.PaidAmount}
	if req.Notes != nil {
		cleaned := sanitizeInput(*req.Notes)
		input.Notes = &cleaned
	}

	purchase, err := s.svc.UpdatePurchase(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseToResponse(purchase))
}

func (s *Server) handleVoidPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	purchase, err := s.svc.VoidPurchase(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseToResponse(purchase))
}
