package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos-api/internal/config"
)

// tillHeaders are always allowed: tills authenticate with a bearer token and
// submit sales with an idempotency key.
var tillHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader}

// CORSMiddleware builds the CORS policy from config. "*" or an empty origin
// list opens the API to any till front end; credentials are only allowed with
// an explicit origin list.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  withHeaders(cfg.AllowedHeaders, tillHeaders...),
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-Idempotency-Replayed"},
		MaxAge:        cfg.MaxAge,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			break
		}
	}
	if !corsConfig.AllowAllOrigins {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = cfg.AllowCredentials
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	return cors.New(corsConfig)
}

func withHeaders(headers []string, required ...string) []string {
	out := append([]string(nil), headers...)
	for _, r := range required {
		found := false
		for _, h := range out {
			if http.CanonicalHeaderKey(h) == r {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}
