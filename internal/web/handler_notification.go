package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/realtime"
	"github.com/vbonduro/fieldtech/internal/service"
)

func (s *Server) notificationRoutes(r chi.Router) {
	read := s.allow(auth.ActionRead, domain.CollectionNotifications)

	r.With(read).Get("/unread-count", s.handleUnreadCount)
	r.With(read).Post("/read-all", s.handleReadAll)
	r.With(read).Post("/{id}/read", s.handleMarkRead)

	res := newResource[domain.Notification](s, s.svc.Notifications, domain.CollectionNotifications, notificationExport)
	res.scope = func(r *http.Request) (crud[domain.Notification], error) {
		inbox, err := s.inbox(r)
		if err != nil {
			return nil, err
		}
		return inbox, nil
	}
	res.mount(r)
}

// inbox is the caller's view of notifications: their own and broadcasts.
func (s *Server) inbox(r *http.Request) (*service.Inbox, error) {
	p, err := principal(r)
	if err != nil {
		return nil, err
	}
	manage := auth.Can(p.Role, auth.ActionManage, domain.CollectionNotifications)
	return s.svc.Notifications.Inbox(p.UserID, manage), nil
}

// notificationFilter keeps other users' notifications off a WebSocket stream.
func notificationFilter(inbox *service.Inbox) realtime.Filter {
	return func(e events.Event) bool {
		if e.Collection != domain.CollectionNotifications {
			return true
		}
		n, ok := e.Data.(*domain.Notification)
		return ok && inbox.Visible(n)
	}
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	n, err := s.svc.Notifications.MarkRead(r.Context(), p.UserID, id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, n)
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	n, err := s.svc.Notifications.MarkAllRead(r.Context(), p.UserID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	n, err := s.svc.Notifications.UnreadCount(r.Context(), p.UserID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, map[string]int{"count": n})
}
