package http

import (
	"net/http"
	"strconv"

	"fishmarket/internal/core"
	"fishmarket/internal/ledger"
	"fishmarket/internal/storage"
)

func saleItemsFromRequest(items []saleItemRequest) []ledger.SaleItemInput {
	if items == nil {
		return nil
	}
	inputs := make([]ledger.SaleItemInput, len(items))
	for i, item := range items {
		inputs[i] = ledger.SaleItemInput{
			FishCategoryID: item.FishCategoryID,
			WeightKg:       item.WeightKg,
			PricePerUnit:   item.PricePerUnit,
		}
	}
	return inputs
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ledger.SaleInput{
		CustomerID: req.CustomerID,
		Time:       sanitizeInput(req.Time),
		Items:      saleItemsFromRequest(req.Items),
		PaidAmount: req.PaidAmount,
		Notes:      sanitizeInput(req.Notes),
	}
	if req.Date != "" {
		date, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		input.Date = date
	}

	sale, err := s.svc.RecordSale(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saleToResponse(sale))
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sale, err := s.svc.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saleToResponse(sale))
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)

	var filter storage.SaleFilter
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, core.Invalid("customer_id", "must be an integer"))
			return
		}
		filter.CustomerID = id
	}
	if v := r.URL.Query().Get("date"); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Date = date.String()
	}

	page, err := s.svc.ListSales(r.Context(), filter, offset, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := core.Paginated[saleResponse]{
		Items:  make([]saleResponse, len(page.Items)),
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	for i := range page.Items {
		out.Items[i] = saleToResponse(&page.Items[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req saleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ledger.UpdateSaleInput{
		PaidAmount: req.PaidAmount,
		Items:      saleItemsFromRequest(req.Items),
	}
	if req.Notes != nil {
		cleaned := sanitizeInput(*req.Notes)
		input.Notes = &cleaned
	}

	sale, err := s.svc.UpdateSale(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saleToResponse(sale))
}

func (s *Server) handleVoidSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sale, err := s.svc.VoidSale(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saleToResponse(sale))
}
