package demoserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mapstack/app/models"
)

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets := s.store.listTickets()
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	ticket := s.store.createTicket()
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ticket": ticket})
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []models.TicketItem `json:"items"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	id := chi.URLParam(r, "id")
	ticket, ok := s.store.updateTicket(id, func(t *models.Ticket) {
		if t.Status != models.TicketActive {
			return
		}
		if body.Items == nil {
			body.Items = []models.TicketItem{}
		}
		t.Items = body.Items
	})
	if !ok {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	if ticket.Status != models.TicketActive {
		writeError(w, http.StatusConflict, "Ticket has already been deducted")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ticket": ticket})
}

func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.deleteTicket(id) {
		writeError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ticket closed"})
}

func (s *Server) handleClearDeducted(w http.ResponseWriter, r *http.Request) {
	cleared := s.store.clearDeducted()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d deducted ticket(s) cleared", cleared),
	})
}

func (s *Server) handleDeduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TicketID string              `json:"ticketId"`
		Items    []models.TicketItem `json:"items"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	ticket, updated, ok := s.store.deduct(body.TicketID, body.Items)
	if !ok {
		writeError(w, http.StatusConflict, "Ticket not found or already deducted")
		return
	}
	if updated == nil {
		updated = []deductedAmount{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticket":          ticket,
		"updatedProducts": updated,
	})
}

func readJSON(r *http.Request, dest interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}
