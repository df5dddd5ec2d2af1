package router

import (
	"net/http"

	contenthandler "resumecms/internal/content"
	"resumecms/internal/content/model"
	contentservice "resumecms/internal/content/service"
	publishhandler "resumecms/internal/publish"
	publishservice "resumecms/internal/publish/service"
	settingshandler "resumecms/internal/settings"
	settingsservice "resumecms/internal/settings/service"
	"resumecms/middleware"
	"resumecms/socket"
)

type Deps struct {
	Registry    *contentservice.Registry
	Publish     *publishservice.PublishService
	Settings    *settingsservice.SettingsService
	Hub         *socket.Hub
	JWTSecret   string
	CORSOrigins []string
}

func Setup(deps Deps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(deps.JWTSecret)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(deps.Hub, w, r, middleware.UserID(r.Context()))
	})
	mux.Handle("/ws", auth(wsHandler))

	// Draft editing and public reads
	hero := contenthandler.NewHeroHandler(deps.Registry)
	mux.Handle("/api/v1/hero", auth(http.HandlerFunc(hero.Draft)))
	mux.Handle("/api/v1/published/hero", http.HandlerFunc(hero.Published))

	mountItems(mux, auth, model.SectionExperiences, deps.Registry.Experiences)
	mountItems(mux, auth, model.SectionProjects, deps.Registry.Projects)
	mountItems(mux, auth, model.SectionEducation, deps.Registry.Education)
	mountItems(mux, auth, model.SectionSkills, deps.Registry.Skills)
	mountItems(mux, auth, model.SectionCertifications, deps.Registry.Certifications)
	mountItems(mux, auth, model.SectionSocialLinks, deps.Registry.SocialLinks)

	// Publish pipeline
	publish := publishhandler.NewPublishHandler(deps.Publish)
	mux.Handle("/api/v1/publish", auth(http.HandlerFunc(publish.Publish)))
	mux.Handle("/api/v1/publish/status", auth(http.HandlerFunc(publish.Status)))
	mux.Handle("/api/v1/publish/latest", auth(http.HandlerFunc(publish.Latest)))
	mux.Handle("/api/v1/preview", auth(http.HandlerFunc(publish.Preview)))

	// Site settings
	settings := settingshandler.NewSettingsHandler(deps.Settings)
	mux.Handle("/api/v1/settings", auth(http.HandlerFunc(settings.Settings)))

	return middleware.RequestLogger(middleware.CORSMiddleware(deps.CORSOrigins)(mux))
}

func mountItems[P any, T any, PT contentservice.Item[T]](mux *http.ServeMux, auth func(http.Handler) http.Handler, section model.Section, svc *contentservice.ItemCollection[P, T, PT]) {
	h := contenthandler.NewItemHandler(svc)
	base := "/api/v1/" + section.Path()

	mux.Handle(base, auth(http.HandlerFunc(h.Collection)))
	mux.Handle(base+"/reorder", auth(http.HandlerFunc(h.Reorder)))
	mux.Handle(base+"/{itemId}", auth(http.HandlerFunc(h.Item)))
	mux.Handle("/api/v1/published/"+section.Path(), http.HandlerFunc(h.Published))
}
