package front

import (
	"net/http"
	"strconv"
	"time"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/http/api/front/handlers"
	"github.com/energee/energee-site/internal/leads"
	"github.com/energee/energee-site/internal/metrics"
	"github.com/energee/energee-site/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Deps groups the services behind the public routes.
type Deps struct {
	Content   handlers.ContentSource
	Leads     *leads.Service
	Analytics *analytics.Recorder
	Limiter   *ratelimit.Manager // Nil disables rate limiting.
	Limits    config.RateLimitConfig
}

// RegisterFrontRoutes registers the public page and API routes.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Content == nil {
		return
	}

	siteHandler := handlers.NewSiteHandler(deps.Content)
	r.GET("/", siteHandler.Page)
	site := r.Group("/v0/site")
	site.GET("/content", siteHandler.Content)
	site.GET("/page", siteHandler.PageJSON)
	site.GET("/plans", siteHandler.Plans)
	site.GET("/faqs", siteHandler.FAQs)

	if deps.Leads != nil {
		formHandler := handlers.NewFormHandler(deps.Leads)
		forms := r.Group("/v0/forms")
		forms.Use(corsMiddleware())
		forms.OPTIONS("/submit", func(c *gin.Context) {})
		forms.POST("/submit", rateLimitMiddleware(deps.Limiter, ratelimit.ScopeSubmit, deps.Limits.SubmitPerMinute), formHandler.Submit)
	}

	if deps.Analytics != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(deps.Analytics)
		events := r.Group("/v0/analytics")
		events.Use(corsMiddleware())
		events.OPTIONS("/track", func(c *gin.Context) {})
		events.POST("/track", rateLimitMiddleware(deps.Limiter, ratelimit.ScopeTrack, deps.Limits.TrackPerMinute), analyticsHandler.Track)
	}
}

// corsMiddleware allows the public endpoints to be called from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware rejects clients exceeding limit requests per minute.
func rateLimitMiddleware(limiter *ratelimit.Manager, scope ratelimit.Scope, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), scope, c.ClientIP(), limit)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !result.Reset.IsZero() {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			retryAfter := int(time.Until(result.Reset).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			metrics.RecordRateLimitHit(string(scope))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Muitas tentativas. Aguarde um momento e tente novamente.",
			})
			return
		}
		c.Next()
	}
}
