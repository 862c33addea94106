package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/learnscripture-api/internal/api/middleware"
	"github.com/phrazzld/learnscripture-api/internal/platform/rollbar"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth      *AuthHandler
	Account   *AccountHandler
	Bible     *BibleHandler
	VerseSets *VerseSetHandler
	Learning  *LearningHandler
	Scores    *ScoreHandler
	Events    *EventHandler
	Groups    *GroupHandler
	Pages     *PageHandler
	Donations *DonationHandler
	Bounces   *BounceHandler
}

// RouterDeps are the cross-cutting collaborators of the router.
type RouterDeps struct {
	Auth        *middleware.AuthMiddleware
	IsModerator middleware.ModeratorCheck
	Reporter    rollbar.Reporter
	Logger      *slog.Logger
}

// NewRouter registers every route. Read routes accept anonymous requests;
// writes require a token and /api/admin requires a moderator.
func NewRouter(h Handlers, deps RouterDeps) http.Handler {
	if deps.Reporter == nil {
		deps.Reporter = rollbar.NoopReporter{}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware(deps.Logger))
	r.Use(middleware.Recoverer(deps.Reporter))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/paypal/ipn", h.Donations.PayPalIPN)
		r.Post("/mailgun/events", h.Bounces.MailgunEvent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Optional)

			r.Get("/versions", h.Bible.ListVersions)
			r.Get("/versions/{slug}/verses", h.Bible.GetVerses)
			r.Get("/versesets", h.VerseSets.Search)
			r.Get("/versesets/{slug}", h.VerseSets.Get)
			r.Get("/leaderboard", h.Scores.Leaderboard)
			r.Get("/accounts/{username}/awards", h.Scores.AccountAwards)
			r.Get("/accounts/{username}/events", h.Events.AccountEvents)
			r.Get("/events/{id}/comments", h.Events.ListComments)
			r.Get("/groups", h.Groups.List)
			r.Get("/groups/{slug}", h.Groups.Get)
			r.Get("/groups/{slug}/members", h.Groups.Members)
			r.Get("/groups/{slug}/leaderboard", h.Groups.Leaderboard)
			r.Get("/groups/{slug}/comments", h.Groups.ListComments)
			r.Get("/pages/navigation", h.Pages.Navigation)
			r.Get("/pages", h.Pages.Get)
			r.Get("/donations/current", h.Donations.CurrentDrive)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)

			r.Get("/account", h.Account.Get)
			r.Put("/account", h.Account.Update)
			r.Post("/account/password", h.Account.ChangePassword)

			r.Post("/versesets", h.VerseSets.Create)
			r.Put("/versesets/{slug}", h.VerseSets.Update)
			r.Post("/versesets/{slug}/learn", h.VerseSets.Learn)

			r.Route("/learning", func(r chi.Router) {
				r.Post("/verses", h.Learning.AddVerse)
				r.Get("/queue", h.Learning.Queue)
				r.Get("/progress", h.Learning.Progress)
				r.Post("/verses/{id}/seen", h.Learning.MarkSeen)
				r.Post("/verses/{id}/test", h.Learning.RecordTest)
				r.Post("/verses/{id}/review-soon", h.Learning.ReviewSoon)
				r.Post("/verses/{id}/reset", h.Learning.Reset)
				r.Delete("/verses/{id}", h.Learning.Cancel)
			})

			r.Get("/awards", h.Scores.MyAwards)
			r.Get("/events/dashboard", h.Events.Dashboard)
			r.Post("/events/{id}/comments", h.Events.AddComment)
			r.Post("/comments/{id}/hide", h.Events.HideComment)

			r.Post("/groups", h.Groups.Create)
			r.Put("/groups/{slug}", h.Groups.Update)
			r.Post("/groups/{slug}/join", h.Groups.Join)
			r.Post("/groups/{slug}/leave", h.Groups.Leave)
			r.Post("/groups/{slug}/invitations", h.Groups.Invite)
			r.Post("/groups/{slug}/comments", h.Groups.AddComment)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireModerator(deps.IsModerator))
				r.Post("/pages", h.Pages.Create)
				r.Put("/pages/{id}", h.Pages.Update)
				r.Delete("/pages/{id}", h.Pages.Delete)
				r.Post("/pages/{id}/move", h.Pages.Move)
			})
		})
	})

	return r
}
