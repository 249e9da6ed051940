// Package cache stores ArcGIS portal tokens in Redis so repeated runs can
// skip the login round trip.
//
// Tokens are cached under a deterministic key built from the portal URL and
// user name, and expire in Redis together with the token itself.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Portal:   "https://sigabpre.example.org/portal/",
//		Username: "editor",
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Log in and store the new token with manager.Set
//	}
//
// # Metrics
//
//   - arcgis_token_cache_hits_total - Cache hits
//   - arcgis_token_cache_misses_total - Cache misses
//   - arcgis_token_cache_errors_total{operation} - Cache operation errors
package cache
