package main

import (
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/api"
	"github.com/phrazzld/learnscripture-api/internal/api/middleware"
)

// setupRouter creates the API handlers from the application's services and
// registers their routes.
func (app *application) setupRouter() http.Handler {
	svc := app.services
	return api.NewRouter(api.Handlers{
		Auth:      api.NewAuthHandler(svc.accounts, app.logger),
		Account:   api.NewAccountHandler(svc.accounts, app.logger),
		Bible:     api.NewBibleHandler(svc.bible),
		VerseSets: api.NewVerseSetHandler(svc.verseSets),
		Learning:  api.NewLearningHandler(svc.learning),
		Scores:    api.NewScoreHandler(svc.scores, svc.groups, svc.awards),
		Events:    api.NewEventHandler(svc.events, svc.comments),
		Groups:    api.NewGroupHandler(svc.groups, svc.comments),
		Pages:     api.NewPageHandler(svc.cms),
		Donations: api.NewDonationHandler(svc.donations, app.logger),
		Bounces:   api.NewBounceHandler(svc.bounces),
	}, api.RouterDeps{
		Auth:        middleware.NewAuthMiddleware(app.jwtService),
		IsModerator: svc.accounts.IsModerator,
		Reporter:    app.reporter,
		Logger:      app.logger,
	})
}
