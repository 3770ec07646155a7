package http

import "github.com/labstack/echo/v4"

type Router struct {
	Health    *Handler
	Expenses  *ExpenseHandler
	Workflows *WorkflowHandler
	Roles     *RoleHandler
	Users     *UserHandler
}

// Register mounts the probes at the root and everything else under /api
// behind mw (auth first, then idempotency).
func (r Router) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)
	e.GET("/ready", r.Health.Ready)

	api := e.Group("/api", mw...)
	r.registerExpenses(api)
	r.registerWorkflows(api)
	r.registerRoles(api)
	r.registerUsers(api)
}

func (r Router) registerExpenses(api *echo.Group) {
	g := api.Group("/expenses")
	g.POST("", r.Expenses.Submit)
	g.GET("", r.Expenses.List)
	g.GET("/stats", r.Expenses.Stats)
	g.GET("/pending", r.Expenses.Pending)
	g.GET("/export", r.Expenses.Export)
	g.GET("/:id", r.Expenses.Get)
	g.GET("/:id/timeline", r.Expenses.Timeline)
	g.POST("/:id/approve", r.Expenses.Approve)
	g.POST("/:id/reject", r.Expenses.Reject)
	g.POST("/:id/progress", r.Expenses.Progress)
}

func (r Router) registerWorkflows(api *echo.Group) {
	g := api.Group("/workflows")
	g.POST("", r.Workflows.Create)
	g.GET("", r.Workflows.List)
	g.GET("/:id", r.Workflows.Get)
}

func (r Router) registerRoles(api *echo.Group) {
	g := api.Group("/roles")
	g.GET("", r.Roles.List)
	g.POST("", r.Roles.Create)
	g.PATCH("/:id", r.Roles.Update)
	g.DELETE("/:id", r.Roles.Delete)
}

func (r Router) registerUsers(api *echo.Group) {
	g := api.Group("/users")
	g.GET("", r.Users.List)
	g.POST("", r.Users.Create)
	g.PATCH("/:id", r.Users.Update)
	g.DELETE("/:id", r.Users.Delete)
}
