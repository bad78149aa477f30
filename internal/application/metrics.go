package application

import "expvar"

// Counters exposed on /debug/vars.
var (
	inquiriesCreated     = expvar.NewInt("inquiries_created")
	notificationFailures = expvar.NewInt("notification_failures")
	listingCacheHits     = expvar.NewInt("listing_cache_hits")
	listingCacheMisses   = expvar.NewInt("listing_cache_misses")
)
