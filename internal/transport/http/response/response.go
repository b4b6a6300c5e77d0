package response

import "github.com/gin-gonic/gin"

// Error writes the API's error body. The {"detail": ...} shape is part of
// the external contract; clients key off it.
func Error(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, gin.H{"detail": detail})
}

// Unauthorized writes a 401 with the challenge header bearer clients expect.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, 401, detail)
}
