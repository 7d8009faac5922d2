package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, integer, float
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings represents the application settings structure. The company
// block doubles as the seller identity for invoicing: CompanyState is the
// state CGST/SGST settings are scoped to, GSTIN is printed on invoices.
type AppSettings struct {
	SiteTitle                   string `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription             string `json:"site_description" validate:"max=500"`
	SignupEnabled               bool   `json:"signup_enabled"`
	ResumeCreationEnabled       bool   `json:"resume_creation_enabled"`
	CompanyName                 string `json:"company_name" validate:"max=200"`
	CompanyCountry              string `json:"company_country" validate:"omitempty,len=2"`
	CompanyState                string `json:"company_state" validate:"max=100"`
	GSTIN                       string `json:"gstin" validate:"max=20"`
	JobQueueWorkerCount         int    `json:"job_queue_worker_count" validate:"min=0,max=64"`
	BackupRetryIntervalMinutes  int    `json:"backup_retry_interval_minutes" validate:"min=0,max=1440"`
	BackupCheckIntervalMinutes  int    `json:"backup_check_interval_minutes" validate:"min=0,max=1440"`
	BillingSweepIntervalMinutes int    `json:"billing_sweep_interval_minutes" validate:"min=0,max=1440"`
	mu                          sync.RWMutex
}

// Global settings instance
var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return appSettings
}

// LoadSettings loads settings from database into memory
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Initialize with defaults
	appSettings = &AppSettings{
		SiteTitle:                   "ResumeDesk",
		SiteDescription:             "Build resumes and cover letters that get interviews",
		SignupEnabled:               true,
		ResumeCreationEnabled:       true,
		CompanyCountry:              "IN",
		JobQueueWorkerCount:         5,
		BackupRetryIntervalMinutes:  2,
		BackupCheckIntervalMinutes:  5,
		BillingSweepIntervalMinutes: 15,
	}

	// Load settings from database
	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Apply loaded settings
	for _, setting := range settings {
		switch setting.Key {
		case "site_title":
			appSettings.SiteTitle = setting.Value
		case "site_description":
			appSettings.SiteDescription = setting.Value
		case "signup_enabled":
			appSettings.SignupEnabled = setting.Value == "true"
		case "resume_creation_enabled":
			appSettings.ResumeCreationEnabled = setting.Value == "true"
		case "company_name":
			appSettings.CompanyName = setting.Value
		case "company_country":
			appSettings.CompanyCountry = setting.Value
		case "company_state":
			appSettings.CompanyState = setting.Value
		case "gstin":
			appSettings.GSTIN = setting.Value
		case "job_queue_worker_count":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.JobQueueWorkerCount = n
			}
		case "backup_retry_interval_minutes":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.BackupRetryIntervalMinutes = n
			}
		case "backup_check_interval_minutes":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.BackupCheckIntervalMinutes = n
			}
		case "billing_sweep_interval_minutes":
			if n, err := strconv.Atoi(setting.Value); err == nil {
				appSettings.BillingSweepIntervalMinutes = n
			}
		}
	}

	return nil
}

// SaveSettings saves current settings to database
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Validate settings
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Convert settings to database format
	settingsMap := map[string]interface{}{
		"site_title":                     settings.SiteTitle,
		"site_description":               settings.SiteDescription,
		"signup_enabled":                 fmt.Sprintf("%t", settings.SignupEnabled),
		"resume_creation_enabled":        fmt.Sprintf("%t", settings.ResumeCreationEnabled),
		"company_name":                   settings.CompanyName,
		"company_country":                settings.CompanyCountry,
		"company_state":                  settings.CompanyState,
		"gstin":                          settings.GSTIN,
		"job_queue_worker_count":         strconv.Itoa(settings.JobQueueWorkerCount),
		"backup_retry_interval_minutes":  strconv.Itoa(settings.BackupRetryIntervalMinutes),
		"backup_check_interval_minutes":  strconv.Itoa(settings.BackupCheckIntervalMinutes),
		"billing_sweep_interval_minutes": strconv.Itoa(settings.BillingSweepIntervalMinutes),
	}

	// Save each setting
	for key, value := range settingsMap {
		var setting Setting
		result := db.Where("setting_key = ?", key).First(&setting)

		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				// Create new setting
				setting = Setting{
					Key:   key,
					Value: fmt.Sprintf("%v", value),
					Type:  getSettingType(key),
				}
				if err := db.Create(&setting).Error; err != nil {
					return fmt.Errorf("failed to create setting %s: %w", key, err)
				}
			} else {
				return fmt.Errorf("failed to query setting %s: %w", key, result.Error)
			}
		} else {
			// Update existing setting
			setting.Value = fmt.Sprintf("%v", value)
			if err := db.Save(&setting).Error; err != nil {
				return fmt.Errorf("failed to update setting %s: %w", key, err)
			}
		}
	}

	// Update global settings
	appSettings = settings
	return nil
}

// getSettingType returns the type of a setting based on its key
func getSettingType(key string) string {
	switch key {
	case "signup_enabled", "resume_creation_enabled":
		return "boolean"
	case "job_queue_worker_count", "backup_retry_interval_minutes",
		"backup_check_interval_minutes", "billing_sweep_interval_minutes":
		return "integer"
	default:
		return "string"
	}
}

// Validate validates the settings
func (s *AppSettings) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// ToJSON converts settings to JSON
func (s *AppSettings) ToJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s)
}

// FromJSON loads settings from JSON
func (s *AppSettings) FromJSON(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Unmarshal(data, s)
}

// GetSiteTitle returns the site title
func (s *AppSettings) GetSiteTitle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SiteTitle
}

// GetSiteDescription returns the site description
func (s *AppSettings) GetSiteDescription() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SiteDescription
}

// IsSignupEnabled returns whether new registrations are accepted
func (s *AppSettings) IsSignupEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SignupEnabled
}

// IsResumeCreationEnabled returns whether new documents may be created
func (s *AppSettings) IsResumeCreationEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ResumeCreationEnabled
}

// SellerState returns the company state tax rules are scoped against
func (s *AppSettings) SellerState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CompanyState
}

// GetJobQueueWorkerCount returns the number of job queue workers
func (s *AppSettings) GetJobQueueWorkerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.JobQueueWorkerCount <= 0 {
		return 5
	}
	return s.JobQueueWorkerCount
}

// GetBackupRetryInterval returns the failed-backup retry interval in minutes
func (s *AppSettings) GetBackupRetryInterval() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.BackupRetryIntervalMinutes <= 0 {
		return 2
	}
	return s.BackupRetryIntervalMinutes
}

// GetBackupCheckInterval returns the pending-backup scan interval in minutes
func (s *AppSettings) GetBackupCheckInterval() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.BackupCheckIntervalMinutes <= 0 {
		return 5
	}
	return s.BackupCheckIntervalMinutes
}

// GetBillingSweepIntervalMinutes returns the billing sweep interval in minutes
func (s *AppSettings) GetBillingSweepIntervalMinutes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.BillingSweepIntervalMinutes <= 0 {
		return 15
	}
	return s.BillingSweepIntervalMinutes
}
