package service

// Platforms accepted by SyncPlatform.
const (
	PlatformStrava      = "strava"
	PlatformGarmin      = "garmin"
	PlatformAppleHealth = "apple_health"
)

// SupportedPlatforms lists every platform name SyncPlatform recognises, in
// display order.
var SupportedPlatforms = []string{PlatformStrava, PlatformGarmin, PlatformAppleHealth}

// Sync error codes reported in PlatformSyncResult.Errors.
const (
	CodeInvalidPlatform    = "invalid-platform"
	CodeMissingCredentials = "missing-credentials"
	CodeNotImplemented     = "not-implemented"
	CodeFetchFailed        = "fetch-failed"
	CodeStoreFailed        = "store-failed"
)

const (
	// Cache key kinds
	cacheKindTrend   = "trend"
	cacheKindRecords = "records"
	cacheKindCycle   = "cycle"
	cacheKindStats   = "stats"
	cacheKindAwards  = "achievements"

	// Dashboard windows
	DashboardWeekDays    = 7
	DashboardTrendPoints = 12
)

// StatsWindows are the day ranges offered for range statistics.
var StatsWindows = []int{7, 30, 90, 365}
