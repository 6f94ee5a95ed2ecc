package http

import (
	"net/http"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
)

// writeFailed answers a failed form write. Validation errors re-render the
// period the form was posted from with a banner; the rest go to failure.
func (s *Server) writeFailed(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status != http.StatusUnprocessableEntity {
		s.failure(w, r, msg, err)
		return
	}
	applog.FromContext(r.Context()).WarnContext(r.Context(), msg, applog.FieldError, err)
	start, startErr := s.ledger.ResolvePeriodStart(r.PostForm.Get("start"))
	if startErr != nil {
		start = s.ledger.CurrentPeriod().Start
	}
	filter, filterErr := parseFormFilter(r.PostForm)
	if filterErr != nil {
		filter = core.ExpenseFilter{IncludeExceptional: true}
	}
	s.renderPeriod(w, r, start, filter, status, userMessage(err))
}

// written finishes a successful form write.
func (s *Server) written(w http.ResponseWriter, r *http.Request) {
	s.invalidate()
	seeOther(w, r, returnTo(r.PostForm))
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	in, err := parseIncomeForm(r.PostForm)
	if err == nil {
		_, err = s.ledger.AddIncome(r.Context(), in)
	}
	if err != nil {
		s.writeFailed(w, r, "Failed to add income", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleAddCharge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	c, err := parseChargeForm(r.PostForm)
	if err == nil {
		_, err = s.ledger.AddRecurringCharge(r.Context(), c)
	}
	if err != nil {
		s.writeFailed(w, r, "Failed to add recurring charge", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleUpdateCharge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.failure(w, r, "Invalid recurring charge id", err)
		return
	}
	c, err := parseChargeForm(r.PostForm)
	if err == nil {
		c.ID = id
		_, err = s.ledger.UpdateRecurringCharge(r.Context(), c)
	}
	if err != nil {
		s.writeFailed(w, r, "Failed to update recurring charge", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleDeleteCharge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteRecurringCharge(r.Context(), id)
	}
	if err != nil {
		s.failure(w, r, "Failed to delete recurring charge", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	e, err := parseExpenseForm(r.PostForm)
	if err == nil {
		_, err = s.ledger.AddExpense(r.Context(), e)
	}
	if err != nil {
		s.writeFailed(w, r, "Failed to add expense", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.failure(w, r, "Invalid expense id", err)
		return
	}
	e, err := parseExpenseForm(r.PostForm)
	if err == nil {
		e.ID = id
		_, err = s.ledger.UpdateExpense(r.Context(), e)
	}
	if err != nil {
		s.writeFailed(w, r, "Failed to update expense", err)
		return
	}
	s.written(w, r)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulaire invalide.", http.StatusBadRequest)
		return
	}
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteExpense(r.Context(), id)
	}
	if err != nil {
		s.failure(w, r, "Failed to delete expense", err)
		return
	}
	s.written(w, r)
}
