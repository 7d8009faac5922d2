package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"

	// Locals slot holding the assembled UserContext for the request.
	KeyUserContext = "USER_CONTEXT"
	// Session cache of the active plan slug. Checkout, cancel and the
	// admin plan assignment drop it so the next request re-resolves.
	KeyUserPlan = "user_plan"
)
