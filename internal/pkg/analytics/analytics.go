package analytics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/models"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/cache"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/database"
)

const (
	CacheKeyMembersTotal  = "analytics:members:total"
	CacheKeySubsActive    = "analytics:subscriptions:active"
	CacheKeySubsByTier    = "analytics:subscriptions:tier:%s" // tier name
	CacheKeyPendingReview = "analytics:contributions:pending"
	CacheKeyLessonsDaily  = "analytics:lessons:completed:%s" // date YYYY-MM-DD
	CacheExpiration       = 30 * time.Minute
	cacheRefreshInterval  = 5 * time.Minute
)

// Snapshot holds the dashboard numbers for the admin overview.
type Snapshot struct {
	TotalMembers          int            `json:"total_members"`
	ActiveSubscriptions   int            `json:"active_subscriptions"`
	SubscriptionsByTier   map[string]int `json:"subscriptions_by_tier"`
	PendingContributions  int            `json:"pending_contributions"`
	LessonsCompletedToday int            `json:"lessons_completed_today"`
}

var (
	lastCacheUpdate  time.Time
	cacheUpdateMutex sync.Mutex
)

var paidTiers = []string{"aspiring", "breakthrough", "driven"}

// ShouldUpdateCache reports whether the snapshot cache is stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheRefreshInterval
}

// UpdateCacheIfNeeded refreshes the snapshot cache when it is stale.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateAnalyticsCache(); err != nil {
			log.Printf("Error refreshing analytics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateAnalyticsCache recomputes every dashboard number and caches it.
func UpdateAnalyticsCache() error {
	db := database.GetDB()

	var totalMembers int64
	if err := db.Model(&models.User{}).Count(&totalMembers).Error; err != nil {
		log.Printf("Error counting members: %v", err)
		return err
	}

	var activeSubs int64
	if err := db.Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Count(&activeSubs).Error; err != nil {
		log.Printf("Error counting active subscriptions: %v", err)
		return err
	}

	var pending int64
	if err := db.Model(&models.Contribution{}).
		Where("status = ?", models.ContributionStatusPending).
		Count(&pending).Error; err != nil {
		log.Printf("Error counting pending contributions: %v", err)
		return err
	}

	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	var lessonsToday int64
	if err := db.Model(&models.LessonProgress{}).
		Where("status = ? AND completed_at BETWEEN ? AND ?", models.ProgressStatusCompleted, todayStart, todayEnd).
		Count(&lessonsToday).Error; err != nil {
		log.Printf("Error counting completed lessons: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyMembersTotal, strconv.FormatInt(totalMembers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeySubsActive, strconv.FormatInt(activeSubs, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyPendingReview, strconv.FormatInt(pending, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyLessonsDaily, today), strconv.FormatInt(lessonsToday, 10), CacheExpiration); err != nil {
		return err
	}

	for _, tier := range paidTiers {
		var count int64
		if err := db.Model(&models.Subscription{}).
			Where("tier = ? AND status = ?", tier, models.SubscriptionStatusActive).
			Count(&count).Error; err != nil {
			log.Printf("Error counting %s subscriptions: %v", tier, err)
			return err
		}
		if err := cache.Set(fmt.Sprintf(CacheKeySubsByTier, tier), strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			return err
		}
	}

	return nil
}

// cachedCount reads a cached counter, falling back to the loader on a miss.
func cachedCount(key string, load func() (int64, error)) int {
	val, err := cache.Get(key)
	if err == nil {
		if count, err := strconv.ParseInt(val, 10, 64); err == nil {
			return int(count)
		}
	}

	count, err := load()
	if err != nil {
		log.Printf("Error loading count for %s: %v", key, err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
		log.Printf("Error caching count for %s: %v", key, err)
	}
	return int(count)
}

// GetTotalMembers returns the member count from cache or database
func GetTotalMembers() int {
	return cachedCount(CacheKeyMembersTotal, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetActiveSubscriptions returns the active subscription count
func GetActiveSubscriptions() int {
	return cachedCount(CacheKeySubsActive, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.Subscription{}).
			Where("status = ?", models.SubscriptionStatusActive).
			Count(&count).Error
		return count, err
	})
}

// GetPendingContributions returns the review queue depth
func GetPendingContributions() int {
	return cachedCount(CacheKeyPendingReview, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.Contribution{}).
			Where("status = ?", models.ContributionStatusPending).
			Count(&count).Error
		return count, err
	})
}

// GetLessonsCompletedToday returns today's completed lesson count
func GetLessonsCompletedToday() int {
	today := time.Now().Format("2006-01-02")
	return cachedCount(fmt.Sprintf(CacheKeyLessonsDaily, today), func() (int64, error) {
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		var count int64
		err := database.GetDB().Model(&models.LessonProgress{}).
			Where("status = ? AND completed_at BETWEEN ? AND ?", models.ProgressStatusCompleted, todayStart, todayEnd).
			Count(&count).Error
		return count, err
	})
}

// GetSubscriptionsByTier returns active subscription counts per paid tier
func GetSubscriptionsByTier() map[string]int {
	result := make(map[string]int, len(paidTiers))
	for _, tier := range paidTiers {
		tier := tier
		result[tier] = cachedCount(fmt.Sprintf(CacheKeySubsByTier, tier), func() (int64, error) {
			var count int64
			err := database.GetDB().Model(&models.Subscription{}).
				Where("tier = ? AND status = ?", tier, models.SubscriptionStatusActive).
				Count(&count).Error
			return count, err
		})
	}
	return result
}

// GetSnapshot returns all dashboard numbers, refreshing the cache if stale
func GetSnapshot() Snapshot {
	UpdateCacheIfNeeded()

	return Snapshot{
		TotalMembers:          GetTotalMembers(),
		ActiveSubscriptions:   GetActiveSubscriptions(),
		SubscriptionsByTier:   GetSubscriptionsByTier(),
		PendingContributions:  GetPendingContributions(),
		LessonsCompletedToday: GetLessonsCompletedToday(),
	}
}
