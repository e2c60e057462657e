package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/streetcode-platform/server/internal/api/handlers"
	"github.com/streetcode-platform/server/internal/api/middleware"
	"github.com/streetcode-platform/server/internal/auth"
	"github.com/streetcode-platform/server/internal/blob"
	"github.com/streetcode-platform/server/internal/config"
	"github.com/streetcode-platform/server/internal/domain/analytics"
	"github.com/streetcode-platform/server/internal/domain/facts"
	"github.com/streetcode-platform/server/internal/domain/media"
	"github.com/streetcode-platform/server/internal/domain/partners"
	"github.com/streetcode-platform/server/internal/domain/sources"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
	"github.com/streetcode-platform/server/internal/domain/tags"
	"github.com/streetcode-platform/server/internal/domain/timeline"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/streetcode-platform/server/internal/email"
	"github.com/streetcode-platform/server/internal/instagram"
	"github.com/streetcode-platform/server/internal/metrics"
	"github.com/streetcode-platform/server/internal/payment"
	"github.com/streetcode-platform/server/internal/storage"
)

// Deps carries everything the router wires together. The caller owns the
// lifecycle of the pool and the clients.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Pool      *pgxpool.Pool
	Repo      storage.Repository
	Blobs     blob.Storage
	Tokens    *auth.TokenManager
	Users     *users.Service
	Email     *email.Service
	Payment   *payment.Client
	Instagram *instagram.Client
	Version   string
	GitCommit string
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger

	streetcodesHandler := handlers.NewStreetcodesHandler(streetcodes.NewService(deps.Repo.Streetcodes()))
	factsHandler := handlers.NewFactsHandler(facts.NewService(deps.Repo.Facts()))
	tagsHandler := handlers.NewTagsHandler(tags.NewService(deps.Repo.Tags()))
	toponymsHandler := handlers.NewToponymsHandler(toponyms.NewService(deps.Repo.Toponyms()))
	partnersHandler := handlers.NewPartnersHandler(partners.NewService(deps.Repo.Partners()))
	timelineHandler := handlers.NewTimelineHandler(timeline.NewService(deps.Repo.Timeline()))
	sourcesHandler := handlers.NewSourcesHandler(sources.NewService(deps.Repo.Sources()))
	analyticsHandler := handlers.NewAnalyticsHandler(analytics.NewService(deps.Repo.Analytics()))
	mediaHandler := handlers.NewMediaHandler(media.NewService(deps.Repo.Media(), deps.Blobs, logger))
	authHandler := handlers.NewAuthHandler(deps.Users)

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Version, deps.GitCommit)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Email)
	paymentHandler := handlers.NewPaymentHandler(deps.Payment)
	instagramHandler := handlers.NewInstagramHandler(deps.Instagram)

	authn := middleware.Authenticate(deps.Tokens)
	adminRole := middleware.RequireRole(auth.RoleAdmin)
	adminTier := middleware.WithRateLimitTierHandler(middleware.TierAdmin)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	// The limiter reads the tier from the request context, so the tier
	// setter has to wrap outside it on the same handler chain.
	rateLimit := middleware.RateLimit(deps.Config.RateLimit)

	admin := func(h http.HandlerFunc) http.Handler {
		return authn(adminRole(adminTier(rateLimit(h))))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authn(rateLimit(h))
	}
	login := func(h http.HandlerFunc) http.Handler {
		return loginTier(rateLimit(h))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Liveness))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readiness))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/streetcodes", methodMux(map[string]http.Handler{
		http.MethodGet:  public(streetcodesHandler.List),
		http.MethodPost: admin(streetcodesHandler.Create),
	}))
	mux.Handle("/api/v1/streetcodes/count", methodMux(map[string]http.Handler{
		http.MethodGet: public(streetcodesHandler.Count),
	}))
	// Lookup routes live outside /streetcodes/: a by-index/{index} pattern
	// under it would conflict with the {id}/<literal> routes below.
	mux.Handle("/api/v1/streetcode-by-index/{index}", methodMux(map[string]http.Handler{
		http.MethodGet: public(streetcodesHandler.GetByIndex),
	}))
	mux.Handle("/api/v1/streetcode-by-url/{url}", methodMux(map[string]http.Handler{
		http.MethodGet: public(streetcodesHandler.GetByURL),
	}))
	mux.Handle("/api/v1/streetcodes/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(streetcodesHandler.Get),
		http.MethodPut:    admin(streetcodesHandler.Update),
		http.MethodDelete: admin(streetcodesHandler.Delete),
	}))
	mux.Handle("/api/v1/streetcodes/{id}/status", methodMux(map[string]http.Handler{
		http.MethodPatch: admin(streetcodesHandler.UpdateStatus),
	}))

	mux.Handle("/api/v1/facts", methodMux(map[string]http.Handler{
		http.MethodPost: admin(factsHandler.Create),
	}))
	mux.Handle("/api/v1/facts/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(factsHandler.Get),
		http.MethodPut:    admin(factsHandler.Update),
		http.MethodDelete: admin(factsHandler.Delete),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/facts", methodMux(map[string]http.Handler{
		http.MethodGet: public(factsHandler.ListByStreetcode),
	}))

	mux.Handle("/api/v1/tags", methodMux(map[string]http.Handler{
		http.MethodGet:  public(tagsHandler.List),
		http.MethodPost: admin(tagsHandler.Create),
	}))
	mux.Handle("/api/v1/tags/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(tagsHandler.Get),
		http.MethodPut:    admin(tagsHandler.Update),
		http.MethodDelete: admin(tagsHandler.Delete),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/tags", methodMux(map[string]http.Handler{
		http.MethodGet: public(tagsHandler.ListByStreetcode),
	}))

	mux.Handle("/api/v1/toponyms", methodMux(map[string]http.Handler{
		http.MethodGet:  public(toponymsHandler.List),
		http.MethodPost: admin(toponymsHandler.Create),
	}))
	mux.Handle("/api/v1/toponyms/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(toponymsHandler.Get),
		http.MethodPut:    admin(toponymsHandler.Update),
		http.MethodDelete: admin(toponymsHandler.Delete),
	}))
	mux.Handle("/api/v1/toponyms/{id}/streetcodes/{streetcodeId}", methodMux(map[string]http.Handler{
		http.MethodPut:    admin(toponymsHandler.Link),
		http.MethodDelete: admin(toponymsHandler.Unlink),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/toponyms", methodMux(map[string]http.Handler{
		http.MethodGet: public(toponymsHandler.ListByStreetcode),
	}))

	mux.Handle("/api/v1/partners", methodMux(map[string]http.Handler{
		http.MethodGet:  public(partnersHandler.List),
		http.MethodPost: admin(partnersHandler.Create),
	}))
	mux.Handle("/api/v1/partners/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(partnersHandler.Get),
		http.MethodPut:    admin(partnersHandler.Update),
		http.MethodDelete: admin(partnersHandler.Delete),
	}))
	mux.Handle("/api/v1/partners/{id}/streetcodes/{streetcodeId}", methodMux(map[string]http.Handler{
		http.MethodPut:    admin(partnersHandler.Link),
		http.MethodDelete: admin(partnersHandler.Unlink),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/partners", methodMux(map[string]http.Handler{
		http.MethodGet: public(partnersHandler.ListByStreetcode),
	}))

	mux.Handle("/api/v1/timeline-items", methodMux(map[string]http.Handler{
		http.MethodPost: admin(timelineHandler.Create),
	}))
	mux.Handle("/api/v1/timeline-items/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(timelineHandler.Get),
		http.MethodPut:    admin(timelineHandler.Update),
		http.MethodDelete: admin(timelineHandler.Delete),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/timeline", methodMux(map[string]http.Handler{
		http.MethodGet: public(timelineHandler.ListByStreetcode),
	}))

	mux.Handle("/api/v1/source-categories", methodMux(map[string]http.Handler{
		http.MethodGet:  public(sourcesHandler.ListCategories),
		http.MethodPost: admin(sourcesHandler.CreateCategory),
	}))
	mux.Handle("/api/v1/source-categories/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(sourcesHandler.GetCategory),
		http.MethodPut:    admin(sourcesHandler.UpdateCategory),
		http.MethodDelete: admin(sourcesHandler.DeleteCategory),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/source-categories", methodMux(map[string]http.Handler{
		http.MethodGet: public(sourcesHandler.ListCategoriesByStreetcode),
	}))
	mux.Handle("/api/v1/source-content", methodMux(map[string]http.Handler{
		http.MethodPost: admin(sourcesHandler.UpsertContent),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/source-categories/{categoryId}/content", methodMux(map[string]http.Handler{
		http.MethodGet:    public(sourcesHandler.GetContent),
		http.MethodDelete: admin(sourcesHandler.DeleteContent),
	}))

	mux.Handle("/api/v1/images", methodMux(map[string]http.Handler{
		http.MethodPost: admin(mediaHandler.UploadImage),
	}))
	mux.Handle("/api/v1/images/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(mediaHandler.GetImage),
		http.MethodDelete: admin(mediaHandler.DeleteImage),
	}))
	mux.Handle("/api/v1/images/{id}/streetcodes/{streetcodeId}", methodMux(map[string]http.Handler{
		http.MethodPut: admin(mediaHandler.LinkImage),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/images", methodMux(map[string]http.Handler{
		http.MethodGet: public(mediaHandler.ListImagesByStreetcode),
	}))

	mux.Handle("/api/v1/audios", methodMux(map[string]http.Handler{
		http.MethodPost: admin(mediaHandler.UploadAudio),
	}))
	mux.Handle("/api/v1/audios/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(mediaHandler.GetAudio),
		http.MethodDelete: admin(mediaHandler.DeleteAudio),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/audio", methodMux(map[string]http.Handler{
		http.MethodGet: public(mediaHandler.GetAudioByStreetcode),
	}))

	mux.Handle("/api/v1/videos", methodMux(map[string]http.Handler{
		http.MethodPost: admin(mediaHandler.CreateVideo),
	}))
	mux.Handle("/api/v1/videos/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(mediaHandler.GetVideo),
		http.MethodPut:    admin(mediaHandler.UpdateVideo),
		http.MethodDelete: admin(mediaHandler.DeleteVideo),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/videos", methodMux(map[string]http.Handler{
		http.MethodGet: public(mediaHandler.ListVideosByStreetcode),
	}))

	mux.Handle("/api/v1/statistics/coordinates", methodMux(map[string]http.Handler{
		http.MethodPost: admin(analyticsHandler.CreateCoordinate),
	}))
	mux.Handle("/api/v1/statistics/coordinates/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    admin(analyticsHandler.GetCoordinate),
		http.MethodDelete: admin(analyticsHandler.DeleteCoordinate),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/coordinates", methodMux(map[string]http.Handler{
		http.MethodGet: public(analyticsHandler.ListCoordinatesByStreetcode),
	}))
	mux.Handle("/api/v1/statistics/records", methodMux(map[string]http.Handler{
		http.MethodPost: admin(analyticsHandler.CreateRecord),
	}))
	mux.Handle("/api/v1/statistics/records/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    admin(analyticsHandler.GetRecord),
		http.MethodDelete: admin(analyticsHandler.DeleteRecord),
	}))
	mux.Handle("/api/v1/streetcodes/{streetcodeId}/statistics", methodMux(map[string]http.Handler{
		http.MethodGet: admin(analyticsHandler.ListRecordsByStreetcode),
	}))
	mux.Handle("/api/v1/scan/{qrId}", methodMux(map[string]http.Handler{
		http.MethodGet:  public(analyticsHandler.RecordExists),
		http.MethodPost: public(analyticsHandler.Scan),
	}))

	mux.Handle("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: login(authHandler.Register),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: login(authHandler.Login),
	}))
	mux.Handle("/api/v1/auth/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: login(authHandler.Refresh),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: authed(authHandler.Logout),
	}))
	mux.Handle("/api/v1/users/me", methodMux(map[string]http.Handler{
		http.MethodGet: authed(authHandler.Me),
	}))

	mux.Handle("/api/v1/feedback", methodMux(map[string]http.Handler{
		http.MethodPost: public(feedbackHandler.Send),
	}))
	mux.Handle("/api/v1/payment/invoice", methodMux(map[string]http.Handler{
		http.MethodPost: public(paymentHandler.CreateInvoice),
	}))
	mux.Handle("/api/v1/instagram/feed", methodMux(map[string]http.Handler{
		http.MethodGet: public(instagramHandler.Feed),
	}))

	var handler http.Handler = mux
	handler = bodySizeLimit(handler)
	handler = middleware.CORS(deps.Config.CORS, logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

// bodySizeLimit applies the media body cap to base64 upload routes and the
// default cap everywhere else.
func bodySizeLimit(next http.Handler) http.Handler {
	standard := middleware.PublicRequestSize()(next)
	upload := middleware.MediaRequestSize()(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && (r.URL.Path == "/api/v1/images" || r.URL.Path == "/api/v1/audios") {
			upload.ServeHTTP(w, r)
			return
		}
		standard.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
