package http

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/services"
	"finanzas/internal/session"
)

type credentialsRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Secret      string `json:"secret"`
}

type sessionResponse struct {
	Token        string `json:"token"`
	AccountID    string `json:"account_id"`
	DisplayName  string `json:"display_name,omitempty"`
	StartedAt    string `json:"started_at"`
	Transactions int    `json:"transactions"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		Token:        s.Token,
		AccountID:    s.Account.ID,
		DisplayName:  s.Account.DisplayName,
		StartedAt:    s.StartedAt.Format(time.RFC3339),
		Transactions: s.Ledger.Len(),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.tracker.Register(r.Context(), sanitizeInput(req.ID), sanitizeInput(req.DisplayName), req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.breakdownCache.Purge()
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.tracker.Login(r.Context(), sanitizeInput(req.ID), req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.breakdownCache.Purge()
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.breakdownCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.tracker.Session()
	if sess == nil {
		writeError(w, r, session.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

type rateBody struct {
	Rate string `json:"rate"`
}

func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rateBody{Rate: s.tracker.Rate().String()})
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req rateBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rate, err := decimal.NewFromString(sanitizeInput(req.Rate))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %q is not a decimal number", core.ErrInvalidRate, req.Rate))
		return
	}
	if err := s.tracker.SetRate(r.Context(), rate); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rateBody{Rate: s.tracker.Rate().String()})
}

type submitRequest struct {
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Category   string `json:"category"`
	Attachment string `json:"attachment,omitempty"`
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.tracker.SubmitTransaction(r.Context(), services.SubmitInput{
		Amount:     sanitizeInput(req.Amount),
		Currency:   sanitizeInput(req.Currency),
		Category:   sanitizeInput(req.Category),
		Attachment: sanitizeInput(req.Attachment),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.breakdownCache.Purge()
	writeJSON(w, http.StatusCreated, toTransactionBody(tx))
}

type transactionsResponse struct {
	Transactions []transactionBody `json:"transactions"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := s.tracker.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := transactionsResponse{Transactions: make([]transactionBody, 0, len(items))}
	for _, t := range items {
		resp.Transactions = append(resp.Transactions, toTransactionBody(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.breakdownCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

type dailyResponse struct {
	Day   string `json:"day"`
	Total string `json:"total"`
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := sanitizeInput(r.URL.Query().Get("day")); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: day must be YYYY-MM-DD", core.ErrInvalidInput))
			return
		}
		day = parsed
	}

	total, err := s.tracker.DailyTotal(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyResponse{
		Day:   day.Format("2006-01-02"),
		Total: total.StringFixed(2),
	})
}

type monthlyResponse struct {
	Month string `json:"month"`
	Total string `json:"total"`
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	total, err := s.tracker.MonthlyTotal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthlyResponse{
		Month: time.Now().Format("2006-01"),
		Total: total.StringFixed(2),
	})
}

type categoryRow struct {
	Category   string `json:"category"`
	Total      string `json:"total"`
	Percentage int64  `json:"percentage"`
}

type categoriesResponse struct {
	Categories []categoryRow `json:"categories"`
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	sess := s.tracker.Session()
	if sess == nil {
		writeError(w, r, session.ErrNoSession)
		return
	}

	if cached, found := s.breakdownCache.Get(sess.Account.ID); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	breakdown, err := s.tracker.CategoryBreakdown(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := categoriesResponse{Categories: make([]categoryRow, 0, len(breakdown))}
	for _, ct := range breakdown {
		resp.Categories = append(resp.Categories, categoryRow{
			Category:   string(ct.Category),
			Total:      ct.Total.StringFixed(2),
			Percentage: ct.Percentage,
		})
	}
	sort.Slice(resp.Categories, func(i, j int) bool {
		return resp.Categories[i].Category < resp.Categories[j].Category
	})

	s.breakdownCache.Set(sess.Account.ID, resp)
	writeJSON(w, http.StatusOK, resp)
}
