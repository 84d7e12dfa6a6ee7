package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"church-site/backend/internal/authstore"
	"church-site/backend/internal/config"
	"church-site/backend/internal/docstore"
	"church-site/backend/internal/domain/announcement"
	"church-site/backend/internal/domain/contact"
	"church-site/backend/internal/domain/message"
	"church-site/backend/internal/domain/missionary"
	"church-site/backend/internal/domain/partner"
	"church-site/backend/internal/domain/planning"
	"church-site/backend/internal/firebase"
	"church-site/backend/internal/handlers"
	"church-site/backend/internal/httpjson"
	"church-site/backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Cfg      config.Config
	Clients  *firebase.Clients
	Sessions *authstore.Store

	MissionarySvc   *missionary.Service
	MessageSvc      *message.Service
	PlanningSvc     *planning.Service
	AnnouncementSvc *announcement.Service
	PartnerSvc      *partner.Service
	ContactSvc      *contact.Service

	Uploads *handlers.Uploads
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.Origins()))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, 200, map[string]any{
			"ok":   true,
			"stub": d.Clients.Stub,
			"ts":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ===== Public content routes =====
	r.Get("/v1/missionaries", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.MissionarySvc.List(r.Context(), true)
		if err != nil {
			status, msg := mapMissionaryError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/missionaries/{slug}", func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		out, err := d.MissionarySvc.GetBySlug(r.Context(), slug)
		if err != nil && errors.Is(err, missionary.ErrNotFound) {
			// Profiles are also addressable by document id.
			out, err = d.MissionarySvc.Get(r.Context(), slug)
		}
		if err != nil {
			status, msg := mapMissionaryError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.MessageSvc.List(r.Context(), true, queryInt(r, "limit"))
		if err != nil {
			status, msg := mapMessageError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/messages/stream", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		handlers.StreamCollection(func() *docstore.CollectionWatch[message.Message] {
			return d.MessageSvc.WatchPublished(limit)
		})(w, r)
	})

	r.Post("/v1/messages/{id}/view", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.MessageSvc.RecordView(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status, msg := mapMessageError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/plannings", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.PlanningSvc.List(r.Context(), queryInt(r, "year"), true)
		if err != nil {
			status, msg := mapPlanningError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/annonces", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.AnnouncementSvc.List(r.Context(), true, queryInt(r, "limit"))
		if err != nil {
			status, msg := mapAnnouncementError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	r.Get("/v1/annonces/stream", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		handlers.StreamCollection(func() *docstore.CollectionWatch[announcement.Announcement] {
			return d.AnnouncementSvc.WatchPublished(limit)
		})(w, r)
	})

	r.Get("/v1/partners", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.PartnerSvc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			status, msg := mapPartnerError(err)
			httpjson.Error(w, status, msg)
			return
		}
		httpjson.Write(w, 200, out)
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Clients.Auth, d.Sessions))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			httpjson.Write(w, 200, map[string]any{
				"uid":    au.UID,
				"email":  au.Email,
				"claims": au.Claims,
				"editor": middleware.IsEditor(au.Claims),
			})
		})

		pr.Get("/v1/session", func(w http.ResponseWriter, r *http.Request) {
			st := d.Sessions.Current()
			httpjson.Write(w, 200, map[string]any{
				"user":    st.User,
				"loading": st.Loading,
			})
		})
	})

	// ===== Admin routes (editor claims required) =====
	r.Route("/v1/admin", func(ar chi.Router) {
		ar.Use(middleware.WithAuth(d.Clients.Auth, d.Sessions))
		ar.Use(middleware.RequireEditor)

		// ----- Missionaries -----
		ar.Get("/missionaries", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.MissionarySvc.List(r.Context(), false)
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/missionaries", func(w http.ResponseWriter, r *http.Request) {
			var in missionary.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MissionarySvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Get("/missionaries/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.MissionarySvc.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Patch("/missionaries/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in missionary.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MissionarySvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/missionaries/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.MissionarySvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		ar.Post("/missionaries/{id}/newsletters", func(w http.ResponseWriter, r *http.Request) {
			var in missionary.AddNewsletterInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MissionarySvc.AddNewsletter(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/missionaries/{id}/newsletters", func(w http.ResponseWriter, r *http.Request) {
			var in struct {
				Path string `json:"path"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Path == "" {
				httpjson.Error(w, 400, "path is required")
				return
			}
			out, err := d.MissionarySvc.RemoveNewsletter(r.Context(), chi.URLParam(r, "id"), in.Path)
			if err != nil {
				status, msg := mapMissionaryError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		// ----- Messages (sermons) -----
		ar.Get("/messages", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.MessageSvc.List(r.Context(), false, queryInt(r, "limit"))
			if err != nil {
				status, msg := mapMessageError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/messages", func(w http.ResponseWriter, r *http.Request) {
			var in message.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MessageSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapMessageError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Get("/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.MessageSvc.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapMessageError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Patch("/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in message.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MessageSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapMessageError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.MessageSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapMessageError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		// ----- Plannings -----
		ar.Get("/plannings", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.PlanningSvc.List(r.Context(), queryInt(r, "year"), false)
			if err != nil {
				status, msg := mapPlanningError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/plannings", func(w http.ResponseWriter, r *http.Request) {
			var in planning.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.PlanningSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapPlanningError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Get("/plannings/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.PlanningSvc.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapPlanningError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Patch("/plannings/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in planning.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.PlanningSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapPlanningError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/plannings/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.PlanningSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapPlanningError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		// ----- Annonces -----
		ar.Get("/annonces", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AnnouncementSvc.List(r.Context(), false, queryInt(r, "limit"))
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/annonces", func(w http.ResponseWriter, r *http.Request) {
			var in announcement.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.AnnouncementSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Get("/annonces/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AnnouncementSvc.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Patch("/annonces/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in announcement.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.AnnouncementSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/annonces/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AnnouncementSvc.Publish(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/annonces/{id}/unpublish", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.AnnouncementSvc.Unpublish(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/annonces/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.AnnouncementSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapAnnouncementError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		// ----- Partners -----
		ar.Post("/partners", func(w http.ResponseWriter, r *http.Request) {
			var in partner.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.PartnerSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapPartnerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Patch("/partners/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in partner.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.PartnerSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapPartnerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/partners/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.PartnerSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapPartnerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		// ----- Contacts (back-office only, including reads) -----
		ar.Get("/contacts", func(w http.ResponseWriter, r *http.Request) {
			if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
				out, err := d.ContactSvc.Search(r.Context(), q)
				if err != nil {
					status, msg := mapContactError(err)
					httpjson.Error(w, status, msg)
					return
				}
				httpjson.Write(w, 200, out)
				return
			}
			membersOnly := r.URL.Query().Get("members") == "true"
			out, err := d.ContactSvc.List(r.Context(), membersOnly)
			if err != nil {
				status, msg := mapContactError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Post("/contacts", func(w http.ResponseWriter, r *http.Request) {
			var in contact.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ContactSvc.Create(r.Context(), in)
			if err != nil {
				status, msg := mapContactError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		ar.Get("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ContactSvc.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				status, msg := mapContactError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Patch("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
			var in contact.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ContactSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapContactError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		ar.Delete("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := d.ContactSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				status, msg := mapContactError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, map[string]any{"ok": true})
		})

		// ----- Uploads -----
		if d.Uploads != nil {
			ar.Post("/uploads/{kind}", d.Uploads.Upload)
			ar.Get("/uploads/{kind}", d.Uploads.List)
			ar.Delete("/uploads/{kind}", d.Uploads.Delete)
			ar.Patch("/uploads/{kind}/metadata", d.Uploads.UpdateMetadata)
		}
	})

	return r
}

func queryInt(r *http.Request, key string) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func mapMissionaryError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, missionary.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, missionary.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapMessageError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, message.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, message.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapPlanningError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, planning.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, planning.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapAnnouncementError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, announcement.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, announcement.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapPartnerError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, partner.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, partner.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapContactError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, contact.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, contact.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
