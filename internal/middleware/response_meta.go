package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	requestIDKey    = "request_id"
	elapsedKey      = "processing_time_ms"
)

// ResponseMeta is the "meta" object attached to JSON envelopes.
type ResponseMeta map[string]interface{}

// WithResponseMeta prepares per-request response metadata. Handlers add to it
// via SetCacheHit and read it back with ExtractMeta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		meta := metaFor(c)
		if id := requestid.Value(c); id != "" {
			meta[requestIDKey] = id
		}
		c.Next()
		if _, ok := meta[elapsedKey]; !ok {
			meta[elapsedKey] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit flags whether the payload came from the results cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata recorded so far, or nil outside WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, _ := raw.(ResponseMeta)
	return meta
}

func metaFor(c *gin.Context) ResponseMeta {
	if c == nil {
		return ResponseMeta{}
	}
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(ResponseMeta); ok {
			return meta
		}
	}
	meta := ResponseMeta{}
	c.Set(responseMetaKey, meta)
	return meta
}
