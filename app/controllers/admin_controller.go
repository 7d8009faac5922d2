package controllers

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/ledger"
	"github.com/resumedesk/ResumeDesk/internal/pkg/mail"
	"github.com/resumedesk/ResumeDesk/internal/pkg/session"
	"github.com/resumedesk/ResumeDesk/internal/pkg/subscription"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// AdminController handles admin-related HTTP requests using repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

// countLiveSubscriptions returns the number of subscriptions currently
// occupying a live slot (active or in grace).
func countLiveSubscriptions() (int64, error) {
	var cnt int64
	err := database.GetDB().Model(&models.UserSubscription{}).
		Where("status IN ?", []string{models.SubStatusActive, models.SubStatusGracePeriod}).
		Count(&cnt).Error
	return cnt, err
}

// adminUserView is one row on the user management page.
type adminUserView struct {
	User        models.User
	ResumeCount int64
	LetterCount int64
	PlanName    string
}

// HandleDashboard renders the admin dashboard with clean repository usage
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get user count", err)
	}

	totalResumes, err := ac.repos.Resume.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get resume count", err)
	}

	totalLetters, err := ac.repos.CoverLetter.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get cover letter count", err)
	}

	var liveSubscriptions int64
	if cnt, err := countLiveSubscriptions(); err == nil {
		liveSubscriptions = cnt
	} else {
		log.Printf("Failed to count live subscriptions: %v", err)
	}

	// Paid revenue booked in the last 30 days, split per invoice currency.
	since := time.Now().AddDate(0, 0, -30)
	revenueINR, err := ac.repos.Invoice.SumPaidTotals(since, "INR")
	if err != nil {
		log.Printf("Failed to sum INR revenue: %v", err)
	}
	revenueUSD, err := ac.repos.Invoice.SumPaidTotals(since, "USD")
	if err != nil {
		log.Printf("Failed to sum USD revenue: %v", err)
	}

	// Get recent users with pagination
	recentUsers, err := ac.repos.User.List(0, 5)
	if err != nil {
		return ac.handleError(c, "Failed to get recent users", err)
	}

	// Get statistics for charts (this would be moved to a service layer later)
	resumeStats := ac.getLastSevenDaysStats("resumes")
	userStats := ac.getLastSevenDaysStats("users")

	return renderPage(c, "admin/dashboard", " | Admin Dashboard", fiber.Map{
		"TotalUsers":        totalUsers,
		"TotalResumes":      totalResumes,
		"TotalLetters":      totalLetters,
		"LiveSubscriptions": liveSubscriptions,
		"RevenueINR":        ledger.FormatAmount(revenueINR, "INR"),
		"RevenueUSD":        ledger.FormatAmount(revenueUSD, "USD"),
		"RecentUsers":       recentUsers,
		"ResumeStats":       resumeStats,
		"UserStats":         userStats,
	})
}

// HandleUsers renders the user management page with repository pattern
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage := 20
	offset := (page - 1) * perPage

	// Get total user count
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get user count", err)
	}

	// Get users with statistics using repository
	usersWithStats, err := ac.repos.User.GetWithStats(offset, perPage)
	if err != nil {
		return ac.handleError(c, "Failed to get users with statistics", err)
	}

	// Generate pagination
	totalPages := int(totalUsers) / perPage
	if int(totalUsers)%perPage > 0 {
		totalPages++
	}
	pages := make([]int, totalPages)
	for i := range pages {
		pages[i] = i + 1
	}

	adminUsers := make([]adminUserView, len(usersWithStats))
	for i, userWithStats := range usersWithStats {
		adminUsers[i] = adminUserView{
			User:        userWithStats.User,
			ResumeCount: userWithStats.ResumeCount,
			LetterCount: userWithStats.LetterCount,
			PlanName:    userWithStats.PlanName,
		}
	}

	return renderPage(c, "admin/users", " | User Management", fiber.Map{
		"Users":       adminUsers,
		"CurrentPage": page,
		"Pages":       pages,
	})
}

// HandleUserEdit renders the user edit page
func (ac *AdminController) HandleUserEdit(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Redirect("/admin/users")
	}

	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/users")
	}

	// Use repository to get user
	user, err := ac.repos.User.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "User not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/users")
	}

	// Resolve the live subscription for the plan block
	planName := "Free"
	var sub *models.UserSubscription
	if s, err := models.FindCurrentSubscription(database.GetDB(), user.ID); err == nil && s != nil && s.IsLive() {
		sub = s
		planName = s.Plan.Name
	}

	// All plans for the assign-plan form
	plans, err := ac.repos.Plan.GetActive()
	if err != nil {
		log.Printf("Failed to load plans for user edit: %v", err)
	}

	return renderPage(c, "admin/user_edit", " | Edit User", fiber.Map{
		"User":         user,
		"PlanName":     planName,
		"Subscription": sub,
		"Plans":        plans,
	})
}

// HandleUserUpdate handles user update with repository pattern
func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Redirect("/admin/users")
	}

	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/users")
	}

	// Get user using repository
	user, err := ac.repos.User.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "User not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/users")
	}

	// Update user fields
	user.Name = c.FormValue("name")
	user.Email = c.FormValue("email")
	user.Role = c.FormValue("role")
	user.Status = c.FormValue("status")
	user.Country = strings.ToUpper(strings.TrimSpace(c.FormValue("country")))
	user.State = strings.TrimSpace(c.FormValue("state"))

	// Validate user
	if err := user.Validate(); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Validation failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/users/edit/" + userID)
	}

	// Update using repository
	if err := ac.repos.User.Update(user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Failed to update user: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/users/edit/" + userID)
	}

	// Success message
	fm := fiber.Map{
		"type":    "success",
		"message": "User updated successfully",
	}

	return flash.WithSuccess(c, fm).Redirect("/admin/users")
}

// HandleUserAssignPlan puts a user on a plan without a payment, recorded
// against the acting admin.
func (ac *AdminController) HandleUserAssignPlan(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Redirect("/admin/users")
	}
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/users")
	}

	planID, err := strconv.ParseUint(c.FormValue("plan_id"), 10, 32)
	if err != nil || planID == 0 {
		fm := fiber.Map{"type": "error", "message": "Please choose a plan"}
		return flash.WithError(c, fm).Redirect("/admin/users/edit/" + userID)
	}

	adminEmail := ""
	if admin, err := ac.repos.User.GetByID(usercontext.GetUserContext(c).UserID); err == nil {
		adminEmail = admin.Email
	}

	svc := subscription.NewServiceFromDB(database.GetDB(), stripeGateway())
	sub, err := svc.AssignPlan(c.Context(), uint(id), uint(planID), adminEmail)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Failed to assign plan: " + err.Error()}
		return flash.WithError(c, fm).Redirect("/admin/users/edit/" + userID)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("User is now on %s", sub.Plan.Name),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/users/edit/" + userID)
}

// HandleUserDelete handles user deletion with repository pattern
func (ac *AdminController) HandleUserDelete(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.SendStatus(fiber.StatusMethodNotAllowed)
	}

	userID := c.Params("id")
	if userID == "" {
		return c.Redirect("/admin/users")
	}

	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/users")
	}

	// Prevent self-deletion (this logic could be moved to a service)
	sess, _ := session.GetSessionStore().Get(c)
	currentUserID := sess.Get(usercontext.KeyUserID).(uint)

	if currentUserID == uint(id) {
		fm := fiber.Map{
			"type":    "error",
			"message": "You cannot delete your own account",
		}
		return flash.WithError(c, fm).Redirect("/admin/users")
	}

	// Delete user using repository
	if err := ac.repos.User.Delete(uint(id)); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Failed to delete user: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/users")
	}

	// Success message
	fm := fiber.Map{
		"type":    "success",
		"message": "User deleted successfully",
	}

	return flash.WithSuccess(c, fm).Redirect("/admin/users")
}

// HandleSearch handles search functionality with repository pattern
func (ac *AdminController) HandleSearch(c *fiber.Ctx) error {
	searchType := c.Query("type", "users")
	query := c.Query("q", "")

	if query == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Please enter a search term",
		}
		return flash.WithError(c, fm).Redirect("/admin/" + searchType)
	}

	switch searchType {
	case "users":
		return ac.handleUserSearch(c, query)
	default:
		return c.Redirect("/admin")
	}
}

// handleUserSearch searches for users using repository
func (ac *AdminController) handleUserSearch(c *fiber.Ctx, query string) error {
	// Search users with stats using repository
	usersWithStats, err := ac.repos.User.SearchWithStats(query)
	if err != nil {
		return ac.handleError(c, "Search failed", err)
	}

	adminUsers := make([]adminUserView, len(usersWithStats))
	for i, userWithStats := range usersWithStats {
		adminUsers[i] = adminUserView{
			User:        userWithStats.User,
			ResumeCount: userWithStats.ResumeCount,
			LetterCount: userWithStats.LetterCount,
			PlanName:    userWithStats.PlanName,
		}
	}

	// Set search result message
	fm := fiber.Map{
		"type":    "info",
		"message": "Search results for '" + query + "': " + strconv.Itoa(len(adminUsers)) + " users found",
	}
	flash.WithInfo(c, fm)

	return renderPage(c, "admin/users", " | User Search", fiber.Map{
		"Users":       adminUsers,
		"CurrentPage": 1,
		"Pages":       []int{1},
	})
}

// handleError handles errors consistently
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	// Log error (this could be improved with structured logging)
	log.Printf("Admin Controller Error: %s - %v", message, err)

	fm := fiber.Map{
		"type":    "error",
		"message": message,
	}

	// Return to appropriate page based on context
	redirectPath := "/admin"
	if c.Path() != "" {
		// Extract section from path for smart redirect
		if strings.Contains(c.Path(), "/users") {
			redirectPath = "/admin/users"
		} else if strings.Contains(c.Path(), "/subscriptions") {
			redirectPath = "/admin/subscriptions"
		} else if strings.Contains(c.Path(), "/transactions") {
			redirectPath = "/admin/transactions"
		}
	}

	return flash.WithError(c, fm).Redirect(redirectPath)
}

// getLastSevenDaysStats generates statistics for the last 7 days using repositories
func (ac *AdminController) getLastSevenDaysStats(statsType string) []models.DailyStats {
	now := time.Now()
	// Start date is 7 days ago at midnight
	startDate := now.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	// End date is today at 23:59:59
	endDate := now.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)

	var stats []models.DailyStats
	var err error

	// Get stats from appropriate repository
	switch statsType {
	case "users":
		stats, err = ac.repos.User.GetDailyStats(startDate, endDate)
	case "resumes":
		stats, err = ac.repos.Resume.GetDailyStats(startDate, endDate)
	default:
		// Return empty stats for unknown type
		return ac.createEmptyDailyStats(7)
	}

	if err != nil {
		// Log error and return empty stats
		log.Printf("Error getting daily stats for %s: %v", statsType, err)
		return ac.createEmptyDailyStats(7)
	}

	// Fill gaps for days with no data
	return ac.fillStatGaps(stats, startDate, 7)
}

// createEmptyDailyStats creates a slice of DailyStats with zero counts for the last n days
func (ac *AdminController) createEmptyDailyStats(days int) []models.DailyStats {
	result := make([]models.DailyStats, days)
	now := time.Now()

	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i))
		dateStr := date.Format("2006-01-02")
		result[i] = models.DailyStats{Date: dateStr, Count: 0}
	}

	return result
}

// fillStatGaps fills missing dates in stats with zero counts
func (ac *AdminController) fillStatGaps(stats []models.DailyStats, startDate time.Time, days int) []models.DailyStats {
	result := make([]models.DailyStats, days)
	statsMap := make(map[string]int)

	// Create map for quick lookup
	for _, stat := range stats {
		statsMap[stat.Date] = stat.Count
	}

	// Fill result with data or zero counts
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i)
		dateStr := date.Format("2006-01-02")
		count := statsMap[dateStr] // defaults to 0 if not found
		result[i] = models.DailyStats{Date: dateStr, Count: count}
	}

	return result
}

// HandleSettings renders the settings page
func (ac *AdminController) HandleSettings(c *fiber.Ctx) error {
	// Get current settings using repository
	settings, err := ac.repos.Setting.Get()
	if err != nil {
		return ac.handleError(c, "Failed to get settings", err)
	}

	return renderPage(c, "admin/settings", " | Settings", fiber.Map{
		"Settings": settings,
	})
}

// HandleSettingsUpdate persists the settings form
func (ac *AdminController) HandleSettingsUpdate(c *fiber.Ctx) error {
	// Get form data
	siteTitle := c.FormValue("site_title")
	siteDescription := c.FormValue("site_description")
	signupEnabled := c.FormValue("signup_enabled") == "on"
	resumeCreationEnabled := c.FormValue("resume_creation_enabled") == "on"

	companyName := strings.TrimSpace(c.FormValue("company_name"))
	companyCountry := strings.ToUpper(strings.TrimSpace(c.FormValue("company_country")))
	companyState := strings.TrimSpace(c.FormValue("company_state"))
	gstin := strings.ToUpper(strings.TrimSpace(c.FormValue("gstin")))

	jobQueueWorkerCount, _ := strconv.Atoi(c.FormValue("job_queue_worker_count"))
	if jobQueueWorkerCount < 1 {
		jobQueueWorkerCount = 1
	} else if jobQueueWorkerCount > 64 {
		jobQueueWorkerCount = 64
	}

	backupRetryIntervalMinutes, _ := strconv.Atoi(c.FormValue("backup_retry_interval_minutes"))
	if backupRetryIntervalMinutes < 0 {
		backupRetryIntervalMinutes = 0
	} else if backupRetryIntervalMinutes > 1440 {
		backupRetryIntervalMinutes = 1440
	}

	backupCheckIntervalMinutes, _ := strconv.Atoi(c.FormValue("backup_check_interval_minutes"))
	if backupCheckIntervalMinutes < 0 {
		backupCheckIntervalMinutes = 0
	} else if backupCheckIntervalMinutes > 1440 {
		backupCheckIntervalMinutes = 1440
	}

	billingSweepIntervalMinutes, _ := strconv.Atoi(c.FormValue("billing_sweep_interval_minutes"))
	if billingSweepIntervalMinutes < 1 {
		billingSweepIntervalMinutes = 1
	} else if billingSweepIntervalMinutes > 1440 {
		billingSweepIntervalMinutes = 1440
	}

	// Create new settings
	newSettings := &models.AppSettings{
		SiteTitle:                   siteTitle,
		SiteDescription:             siteDescription,
		SignupEnabled:               signupEnabled,
		ResumeCreationEnabled:       resumeCreationEnabled,
		CompanyName:                 companyName,
		CompanyCountry:              companyCountry,
		CompanyState:                companyState,
		GSTIN:                       gstin,
		JobQueueWorkerCount:         jobQueueWorkerCount,
		BackupRetryIntervalMinutes:  backupRetryIntervalMinutes,
		BackupCheckIntervalMinutes:  backupCheckIntervalMinutes,
		BillingSweepIntervalMinutes: billingSweepIntervalMinutes,
	}

	// Save settings using repository
	if err := ac.repos.Setting.Save(newSettings); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Failed to save settings: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/settings")
	}

	// Success message
	fm := fiber.Map{
		"type":    "success",
		"message": "Settings saved successfully",
	}

	return flash.WithSuccess(c, fm).Redirect("/admin/settings")
}

// HandleResendActivation resends activation email using repository pattern
func (ac *AdminController) HandleResendActivation(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Redirect("/admin/users")
	}

	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/users")
	}

	// Get user using repository
	user, err := ac.repos.User.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "User not found",
		}
		return flash.WithError(c, fm).Redirect("/admin/users")
	}

	if user.Status != models.STATUS_INACTIVE {
		fm := fiber.Map{
			"type":    "info",
			"message": "This account does not need activation",
		}
		return flash.WithInfo(c, fm).Redirect("/admin/users/edit/" + userID)
	}

	// Generate new activation token
	if err := user.GenerateActivationToken(); err != nil {
		return ac.handleError(c, "Failed to generate activation token", err)
	}

	// Save user with new token using repository
	if err := ac.repos.User.Update(user); err != nil {
		return ac.handleError(c, "Failed to save activation token", err)
	}

	activationLink := fmt.Sprintf("%s/activate?token=%s", env.GetEnv("PUBLIC_DOMAIN", ""), user.ActivationToken)
	go func(email, name, link string) {
		if err := mail.SendActivationEmail(email, name, link); err != nil {
			log.Printf("Failed to resend activation mail to %s: %v", email, err)
		}
	}(user.Email, user.Name, activationLink)

	fm := fiber.Map{
		"type":    "success",
		"message": "Activation mail sent",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/users/edit/" + userID)
}
