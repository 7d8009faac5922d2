package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/cache"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
)

const (
	CacheKeyResumesTotal   = "statistics:resumes:total"
	CacheKeyLettersTotal   = "statistics:letters:total"
	CacheKeyDocumentsDaily = "statistics:documents:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers          = "statistics:users:total"
	CacheExpiration        = 30 * time.Minute
)

// StatisticsData holds the headline numbers for the landing page and admin dashboard
type StatisticsData struct {
	TodayDocuments int
	TotalUsers     int
	TotalResumes   int
	TotalLetters   int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached statistics are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has passed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Refreshing statistics cache...")
		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error refreshing statistics cache: %v", err)
		} else {
			log.Println("Statistics cache refreshed")
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded call to refresh
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalResumes int64
	if err := db.Model(&models.Resume{}).Count(&totalResumes).Error; err != nil {
		log.Printf("Error counting total resumes: %v", err)
		return err
	}

	var totalLetters int64
	if err := db.Model(&models.CoverLetter{}).Count(&totalLetters).Error; err != nil {
		log.Printf("Error counting total cover letters: %v", err)
		return err
	}

	// Count documents created today across both kinds
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	var todayResumes int64
	if err := db.Model(&models.Resume{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayResumes).Error; err != nil {
		log.Printf("Error counting today's resumes: %v", err)
		return err
	}
	var todayLetters int64
	if err := db.Model(&models.CoverLetter{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayLetters).Error; err != nil {
		log.Printf("Error counting today's cover letters: %v", err)
		return err
	}
	todayDocuments := todayResumes + todayLetters

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyResumesTotal, strconv.FormatInt(totalResumes, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total resumes: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyLettersTotal, strconv.FormatInt(totalLetters, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total cover letters: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyDocumentsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayDocuments, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's documents: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Resumes: %d, Cover Letters: %d, Today's Documents: %d, Total Users: %d",
		totalResumes, totalLetters, todayDocuments, totalUsers)

	return nil
}

// GetTotalResumes returns the total number of resumes from cache or database
func GetTotalResumes() int {
	val, err := cache.Get(CacheKeyResumesTotal)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.Resume{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total resumes: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyResumesTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total resumes: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalLetters returns the total number of cover letters from cache or database
func GetTotalLetters() int {
	val, err := cache.Get(CacheKeyLettersTotal)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.CoverLetter{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total cover letters: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyLettersTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total cover letters: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayDocuments returns the number of documents created today from cache or database
func GetTodayDocuments() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyDocumentsDaily, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		var resumes int64
		if err := db.Model(&models.Resume{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&resumes).Error; err != nil {
			log.Printf("Error counting today's resumes: %v", err)
			return 0
		}
		var letters int64
		if err := db.Model(&models.CoverLetter{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&letters).Error; err != nil {
			log.Printf("Error counting today's cover letters: %v", err)
			return 0
		}
		count := resumes + letters

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's documents: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayDocuments: GetTodayDocuments(),
		TotalUsers:     GetTotalUsers(),
		TotalResumes:   GetTotalResumes(),
		TotalLetters:   GetTotalLetters(),
	}
}
