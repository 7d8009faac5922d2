package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router is one installable route group.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter mounts the browser routes first so the session store, OAuth
// providers and the user context middleware exist before the API routes that
// depend on them.
func InstallRouter(app *fiber.App) {
	for _, r := range []Router{NewHttpRouter(), NewApiRouter()} {
		r.InstallRouter(app)
	}
}
