package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toNew()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.transactions.Create(r.Context(), in); err != nil {
		s.fail(w, r, err, "Error adding transaction", applog.OpCreate)
		return
	}
	writeMessage(w, "Transaction Added!")
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context(), pathEmail(r))
	if err != nil {
		s.fail(w, r, err, "Error fetching transactions", applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.fail(w, r, err, "Error updating transaction", applog.OpUpdate)
		return
	}
	writeMessage(w, "Transaction Updated!")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "Error deleting transaction", applog.OpDelete)
		return
	}
	writeMessage(w, "Transaction Deleted!")
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByEmail(r.Context(), pathEmail(r))
	if err != nil {
		s.fail(w, r, err, "Error fetching user", applog.OpRead)
		return
	}
	// A missing user encodes as null.
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.users.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		s.fail(w, r, err, "Error registering user", applog.OpRegister)
		return
	}
	writeMessage(w, res.Message())
}

// fail maps validation errors to 400 and everything else to 500 with a
// generic message; the cause is only logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, msg, op string) {
	ctx := r.Context()
	if isValidation(err) {
		applog.FromContext(ctx).DebugContext(ctx, "Request rejected",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldOperation, op)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	errorType := applog.ErrorTypeInternal
	if errors.Is(err, services.ErrOperationFailed) {
		errorType = applog.ErrorTypeDatabase
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentHTTP).ErrorContext(ctx, msg,
		applog.FieldError, err,
		applog.FieldErrorType, errorType,
		applog.FieldOperation, op,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusInternalServerError, msg)
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrEmptyOwner,
		core.ErrEmptyName,
		core.ErrEmptyEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// pathEmail returns the unescaped email path segment. chi matches on the
// raw path, so "%40" arrives still encoded.
func pathEmail(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return strings.TrimSpace(raw)
}
