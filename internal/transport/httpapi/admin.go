package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/store"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	admin, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.log.Info("admin login failed", slog.String("request_id", RequestIDFromContext(r.Context())))
		writeError(w, r, s.log, err)
		return
	}
	if err := s.sessions.Set(w, admin); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	s.log.Info("admin logged in", slog.String("admin_id", admin.ID.String()))
	writeJSON(w, http.StatusOK, meResponse{ID: admin.ID.String(), Email: admin.Email})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{ID: sess.AdminID.String(), Email: sess.Email})
}

func (s *Server) listAllServices(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.ListServices(r.Context(), false)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toServiceResponse))
}

func (s *Server) getService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	svc, err := s.catalog.GetService(r.Context(), id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(svc))
}

func (s *Server) createService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	svc, err := s.catalog.CreateService(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceResponse(svc))
}

func (s *Server) updateService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	svc, err := s.catalog.UpdateService(r.Context(), id, req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(svc))
}

func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.catalog.DeleteService(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFabric(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	f, err := s.catalog.GetFabric(r.Context(), id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFabricResponse(f))
}

func (s *Server) createFabric(w http.ResponseWriter, r *http.Request) {
	var req fabricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	f, err := s.catalog.CreateFabric(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFabricResponse(f))
}

func (s *Server) updateFabric(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req fabricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	f, err := s.catalog.UpdateFabric(r.Context(), id, req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toFabricResponse(f))
}

func (s *Server) deleteFabric(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.catalog.DeleteFabric(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	m, err := s.catalog.GetTeamMember(r.Context(), id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamMemberResponse(m))
}

func (s *Server) createTeamMember(w http.ResponseWriter, r *http.Request) {
	var req teamMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	m, err := s.catalog.CreateTeamMember(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamMemberResponse(m))
}

func (s *Server) updateTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req teamMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	m, err := s.catalog.UpdateTeamMember(r.Context(), id, req.toDomain())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamMemberResponse(m))
}

func (s *Server) deleteTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.catalog.DeleteTeamMember(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread")
	rows, err := s.contacts.List(r.Context(), unread == "1" || strings.EqualFold(unread, "true"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toContactResponse))
}

func (s *Server) markContactRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.contacts.MarkRead(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.contacts.Delete(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseInstant accepts RFC 3339 or a bare date, the latter as local midnight.
func (s *Server) parseInstant(raw, name string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, s.booking.Location())
	if err != nil {
		return nil, badRequestf("%s must be RFC 3339 or YYYY-MM-DD", name)
	}
	return &t, nil
}

func (s *Server) eventFilter(r *http.Request) (store.EventFilter, error) {
	q := r.URL.Query()
	var f store.EventFilter
	var err error

	if f.From, err = s.parseInstant(q.Get("from"), "from"); err != nil {
		return store.EventFilter{}, err
	}
	if f.To, err = s.parseInstant(q.Get("to"), "to"); err != nil {
		return store.EventFilter{}, err
	}
	if raw := q.Get("status"); raw != "" {
		st, err := domain.ParseEventStatus(raw)
		if err != nil {
			return store.EventFilter{}, badRequestf("invalid status %q", raw)
		}
		f.Status = &st
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return store.EventFilter{}, badRequestf("%s must be an integer", name)
		}
		*dst = n
	}
	return f, nil
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := s.eventFilter(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	rows, err := s.booking.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toEventResponse))
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	ev, err := s.booking.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	ev, err := s.booking.CreateEvent(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(ev))
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	ev, err := s.booking.UpdateEvent(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

func (s *Server) setEventStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.booking.SetStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.booking.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listClosures(w http.ResponseWriter, r *http.Request) {
	rows, err := s.booking.ListClosures(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toClosureResponse))
}

func (s *Server) createClosure(w http.ResponseWriter, r *http.Request) {
	var req closureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	series, err := s.booking.CreateClosure(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClosureResponse(series))
}

func (s *Server) deleteClosure(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.booking.DeleteClosure(r.Context(), id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
