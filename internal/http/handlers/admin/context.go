package admin

import (
	handlershared "github.com/tavolo-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id", "admin id invalid", "admin id type invalid")
}
