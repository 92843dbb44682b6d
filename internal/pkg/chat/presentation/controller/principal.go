package controller

import (
	"github.com/gin-gonic/gin"

	chat "mobelhaus/internal/pkg/chat/application/domain"
)

// principalFrom reads the identity the platform's auth layer established
// upstream. The headers are set by the reverse proxy after session
// validation. allowQuery enables a query-parameter fallback for local
// development; it must stay off in production, where the URL is
// caller-controlled.
func principalFrom(c *gin.Context, allowQuery bool) (userID, userRole string) {
	userID = c.GetHeader("X-User-Id")
	userRole = c.GetHeader("X-User-Role")
	if allowQuery {
		if userID == "" {
			userID = c.Query("user_id")
		}
		if userRole == "" {
			userRole = c.Query("user_role")
		}
	}
	return userID, userRole
}

// principalRole resolves the acting principal's role for authorization
// checks.
func principalRole(c *gin.Context, allowQuery bool) chat.SenderRole {
	_, role := principalFrom(c, allowQuery)
	return chat.SenderRole(role)
}
