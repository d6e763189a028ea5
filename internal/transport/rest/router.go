package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/admin-management/internal/auth"
	operlogModel "github.com/frahmantamala/admin-management/internal/core/datamodel/operlog"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/dept"
	"github.com/frahmantamala/admin-management/internal/menu"
	"github.com/frahmantamala/admin-management/internal/operlog"
	"github.com/frahmantamala/admin-management/internal/post"
	"github.com/frahmantamala/admin-management/internal/role"
	"github.com/frahmantamala/admin-management/internal/transport/middleware"
	"github.com/frahmantamala/admin-management/internal/transport/swagger"
	"github.com/frahmantamala/admin-management/internal/user"
	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"
)

// Handlers collects every feature handler the router mounts.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Role    *role.Handler
	Menu    *menu.Handler
	Dept    *dept.Handler
	Post    *post.Handler
	OperLog *operlog.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redisClient *redis.Client, authn *middleware.Authenticator, bus *events.EventBus, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redisClient)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth routes
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/auth/captchaImage", h.Auth.CaptchaImage)

		// Everything below requires a valid token plus a live session
		r.Group(func(pr chi.Router) {
			pr.Use(authn.Handler)

			pr.Get("/auth/getInfo", h.Auth.GetInfo)
			pr.Post("/auth/logout", h.Auth.Logout)

			pr.Route("/system/user", func(ur chi.Router) {
				ur.Get("/profile", h.User.Profile)
				ur.With(middleware.RequirePermissions("system:user:list")).Get("/list", h.User.List)
				ur.With(middleware.RequirePermissions("system:user:query")).Get("/{id}", h.User.Get)
				ur.With(
					middleware.RequirePermissions("system:user:add"),
					middleware.Audit(bus, "user management", operlogModel.BusinessInsert),
				).Post("/", h.User.Create)
				ur.With(
					middleware.RequirePermissions("system:user:edit"),
					middleware.Audit(bus, "user management", operlogModel.BusinessUpdate),
				).Put("/", h.User.Update)
				ur.With(
					middleware.RequirePermissions("system:user:resetPwd"),
					middleware.Audit(bus, "user management", operlogModel.BusinessUpdate),
				).Put("/resetPwd", h.User.ResetPassword)
				ur.With(
					middleware.RequirePermissions("system:user:edit"),
					middleware.Audit(bus, "user management", operlogModel.BusinessUpdate),
				).Put("/changeStatus", h.User.ChangeStatus)
				ur.With(
					middleware.RequirePermissions("system:user:edit"),
					middleware.Audit(bus, "user management", operlogModel.BusinessGrant),
				).Put("/authRole", h.User.AuthRole)
				ur.With(
					middleware.RequirePermissions("system:user:remove"),
					middleware.Audit(bus, "user management", operlogModel.BusinessDelete),
				).Delete("/{ids}", h.User.Delete)
			})

			pr.Route("/system/role", func(rr chi.Router) {
				rr.With(middleware.RequirePermissions("system:role:list")).Get("/list", h.Role.List)
				rr.With(middleware.RequirePermissions("system:role:query")).Get("/{id}", h.Role.Get)
				rr.With(middleware.RequirePermissions("system:role:list")).Get("/authUser/allocatedList/{id}", h.Role.AllocatedUsers)
				rr.With(middleware.RequirePermissions("system:role:list")).Get("/authUser/unallocatedList/{id}", h.Role.UnallocatedUsers)
				rr.With(
					middleware.RequirePermissions("system:role:add"),
					middleware.Audit(bus, "role management", operlogModel.BusinessInsert),
				).Post("/", h.Role.Create)
				rr.With(
					middleware.RequirePermissions("system:role:edit"),
					middleware.Audit(bus, "role management", operlogModel.BusinessUpdate),
				).Put("/", h.Role.Update)
				rr.With(
					middleware.RequirePermissions("system:role:edit"),
					middleware.Audit(bus, "role management", operlogModel.BusinessUpdate),
				).Put("/dataScope", h.Role.UpdateDataScope)
				rr.With(
					middleware.RequirePermissions("system:role:edit"),
					middleware.Audit(bus, "role management", operlogModel.BusinessUpdate),
				).Put("/changeStatus", h.Role.ChangeStatus)
				rr.With(
					middleware.RequirePermissions("system:role:edit"),
					middleware.Audit(bus, "role management", operlogModel.BusinessGrant),
				).Put("/authUser/selectAll", h.Role.GrantUsers)
				rr.With(
					middleware.RequirePermissions("system:role:edit"),
					middleware.Audit(bus, "role management", operlogModel.BusinessGrant),
				).Put("/authUser/cancelAll", h.Role.RevokeUsers)
				rr.With(
					middleware.RequirePermissions("system:role:remove"),
					middleware.Audit(bus, "role management", operlogModel.BusinessDelete),
				).Delete("/{ids}", h.Role.Delete)
			})

			pr.Route("/system/menu", func(mr chi.Router) {
				mr.With(middleware.RequirePermissions("system:menu:list")).Get("/list", h.Menu.List)
				mr.With(middleware.RequirePermissions("system:menu:list")).Get("/treeselect", h.Menu.Tree)
				mr.With(middleware.RequirePermissions("system:menu:query")).Get("/{id}", h.Menu.Get)
				mr.With(
					middleware.RequirePermissions("system:menu:add"),
					middleware.Audit(bus, "menu management", operlogModel.BusinessInsert),
				).Post("/", h.Menu.Create)
				mr.With(
					middleware.RequirePermissions("system:menu:edit"),
					middleware.Audit(bus, "menu management", operlogModel.BusinessUpdate),
				).Put("/", h.Menu.Update)
				mr.With(
					middleware.RequirePermissions("system:menu:remove"),
					middleware.Audit(bus, "menu management", operlogModel.BusinessDelete),
				).Delete("/{id}", h.Menu.Delete)
			})

			pr.Route("/system/dept", func(dr chi.Router) {
				dr.With(middleware.RequirePermissions("system:dept:list")).Get("/list", h.Dept.Tree)
				dr.With(middleware.RequirePermissions("system:dept:query")).Get("/{id}", h.Dept.Get)
				dr.With(
					middleware.RequirePermissions("system:dept:add"),
					middleware.Audit(bus, "dept management", operlogModel.BusinessInsert),
				).Post("/", h.Dept.Create)
				dr.With(
					middleware.RequirePermissions("system:dept:edit"),
					middleware.Audit(bus, "dept management", operlogModel.BusinessUpdate),
				).Put("/", h.Dept.Update)
				dr.With(
					middleware.RequirePermissions("system:dept:remove"),
					middleware.Audit(bus, "dept management", operlogModel.BusinessDelete),
				).Delete("/{id}", h.Dept.Delete)
			})

			pr.Route("/system/post", func(psr chi.Router) {
				psr.With(middleware.RequirePermissions("system:post:list")).Get("/list", h.Post.List)
				psr.With(middleware.RequirePermissions("system:post:query")).Get("/{id}", h.Post.Get)
				psr.With(
					middleware.RequirePermissions("system:post:add"),
					middleware.Audit(bus, "post management", operlogModel.BusinessInsert),
				).Post("/", h.Post.Create)
				psr.With(
					middleware.RequirePermissions("system:post:edit"),
					middleware.Audit(bus, "post management", operlogModel.BusinessUpdate),
				).Put("/", h.Post.Update)
				psr.With(
					middleware.RequirePermissions("system:post:remove"),
					middleware.Audit(bus, "post management", operlogModel.BusinessDelete),
				).Delete("/{ids}", h.Post.Delete)
			})

			pr.Route("/monitor/operlog", func(or chi.Router) {
				or.With(middleware.RequirePermissions("monitor:operlog:list")).Get("/list", h.OperLog.List)
				or.With(
					middleware.RequirePermissions("monitor:operlog:remove"),
					middleware.Audit(bus, "operation log", operlogModel.BusinessDelete),
				).Delete("/clean", h.OperLog.Clear)
			})
		})
	})
}
