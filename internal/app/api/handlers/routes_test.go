package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petrelhq/petrel/internal/app/service/webhook"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	apiV1 := r.Group("/api/v1")
	RegisterPetRoutes(apiV1, nil)
	RegisterHealthEventRoutes(apiV1, nil)
	RegisterFoodItemRoutes(apiV1, nil)
	RegisterSubscriptionRoutes(apiV1, nil)
	RegisterMfaRoutes(apiV1, nil)
	RegisterWaitlistRoutes(apiV1, nil)

	hooks := r.Group("/webhooks")
	RegisterWebhookRoutes(hooks, webhook.NewVerifier(""), nil, zap.NewNop().Sugar())

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/pets"))
	require.True(t, contains("GET /api/v1/pets"))
	require.True(t, contains("GET /api/v1/pets/:id"))
	require.True(t, contains("PATCH /api/v1/pets/:id"))
	require.True(t, contains("DELETE /api/v1/pets/:id"))
	require.True(t, contains("POST /api/v1/pets/:id/events"))
	require.True(t, contains("GET /api/v1/pets/:id/events"))
	require.True(t, contains("DELETE /api/v1/events/:id"))
	require.True(t, contains("POST /api/v1/food-items"))
	require.True(t, contains("GET /api/v1/food-items/:id"))
	require.True(t, contains("GET /api/v1/subscription"))
	require.True(t, contains("POST /api/v1/mfa/challenge"))
	require.True(t, contains("POST /api/v1/mfa/verify"))
	require.True(t, contains("POST /api/v1/waitlist"))
	require.True(t, contains("POST /webhooks/billing"))
}
