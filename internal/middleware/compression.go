package middleware

import (
	"compress/gzip"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Compression gzips response bodies for clients that accept it. Levels outside the gzip
// range fall back to the default compression level. The metrics endpoint is left alone so
// scrapers negotiate their own encoding.
func Compression(level int) gin.HandlerFunc {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return ginGzip.Gzip(level, ginGzip.WithExcludedPaths([]string{"/metrics"}))
}
