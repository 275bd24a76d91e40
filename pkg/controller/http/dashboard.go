package http

import "net/http"

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := s.uc.Dashboard.StatCards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, cards)
}

func (s *Server) navigationHandler(w http.ResponseWriter, r *http.Request) {
	menu, err := s.uc.Navigation.Menu(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, menu)
}
