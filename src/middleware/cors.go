package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/models"
)

// CORS allows credentialed requests from the admin frontend.
// frontendURL may hold several comma-separated origins.
func CORS(frontendURL string) gin.HandlerFunc {
	var origins []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", models.RefreshTokenHeader},
		ExposeHeaders:    []string{"X-Request-ID", models.AccessTokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
