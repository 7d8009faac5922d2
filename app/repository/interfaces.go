package repository

import (
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	GetStatsByUserID(userID uint) (*UserStats, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithStats(offset, limit int) ([]UserWithStats, error)
	SearchWithStats(query string) ([]UserWithStats, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ResumeRepository defines the interface for resume-related database operations
type ResumeRepository interface {
	Create(resume *models.Resume) error
	GetByID(id uint) (*models.Resume, error)
	GetByUUID(uuid string) (*models.Resume, error)
	GetByShareLink(shareLink string) (*models.Resume, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Resume, error)
	Update(resume *models.Resume) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Resume, error)
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	UpdateViewCount(id uint) error
	UpdateDownloadCount(id uint) error
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// CoverLetterRepository defines the interface for cover-letter database operations
type CoverLetterRepository interface {
	Create(letter *models.CoverLetter) error
	GetByID(id uint) (*models.CoverLetter, error)
	GetByUUID(uuid string) (*models.CoverLetter, error)
	GetByShareLink(shareLink string) (*models.CoverLetter, error)
	GetByUserID(userID uint, offset, limit int) ([]models.CoverLetter, error)
	Update(letter *models.CoverLetter) error
	Delete(id uint) error
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	UpdateViewCount(id uint) error
	UpdateDownloadCount(id uint) error
}

// TemplateRepository defines the interface for document-template catalog operations
type TemplateRepository interface {
	Create(tpl *models.DocumentTemplate) error
	GetByID(id uint) (*models.DocumentTemplate, error)
	GetByKindAndKey(kind, key string) (*models.DocumentTemplate, error)
	GetAll() ([]models.DocumentTemplate, error)
	GetActive(kind string) ([]models.DocumentTemplate, error)
	Update(tpl *models.DocumentTemplate) error
	Delete(id uint) error
	KeyExists(kind, key string) (bool, error)
	KeyExistsExceptID(kind, key string, id uint) (bool, error)
}

// PlanRepository defines the interface for subscription-plan catalog operations
type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetBySlug(slug string) (*models.SubscriptionPlan, error)
	GetAll() ([]models.SubscriptionPlan, error)
	GetActive() ([]models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
	UpsertPricing(pricing *models.PlanPricing) error
	DeletePricing(planID uint, region string) error
	CountLiveSubscriptions(planID uint) (int64, error)
}

// InvoiceRepository defines the interface for invoice operations
type InvoiceRepository interface {
	Create(invoice *models.Invoice) error
	GetByID(id uint) (*models.Invoice, error)
	GetByNumber(number string) (*models.Invoice, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Invoice, error)
	List(offset, limit int) ([]models.Invoice, error)
	Count() (int64, error)
	Update(invoice *models.Invoice) error
	NextSequence(year int) (int, error)
	SumPaidTotals(since time.Time, currency string) (decimal.Decimal, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// QueueRepository defines the interface for cache/queue operations
type QueueRepository interface {
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKey(key string) (int64, error)
	GetListLength(key string) (int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// UserWithStats represents a user with additional statistics
type UserWithStats struct {
	User        models.User
	ResumeCount int64
	LetterCount int64
	PlanName    string
}

// UserStats provides aggregated document counts for a single user.
type UserStats struct {
	ResumeCount int64
	LetterCount int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User        UserRepository
	Resume      ResumeRepository
	CoverLetter CoverLetterRepository
	Template    TemplateRepository
	Plan        PlanRepository
	Invoice     InvoiceRepository
	Setting     SettingRepository
	Queue       QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Resume:      NewResumeRepository(db),
		CoverLetter: NewCoverLetterRepository(db),
		Template:    NewTemplateRepository(db),
		Plan:        NewPlanRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Setting:     NewSettingRepository(db),
		Queue:       NewQueueRepository(),
	}
}
