package middleware

import "github.com/gin-gonic/gin"

// Chain returns guards followed by h in a fresh slice, so route groups
// sharing one guard slice never write into each other's backing array.
func Chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}
