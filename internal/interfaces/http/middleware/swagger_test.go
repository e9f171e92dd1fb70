package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwtMiddleware), func(c *gin.Context) {
		c.String(http.StatusOK, "swagger")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		want       int
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "10.0.0.1:1234", http.StatusNotFound},
		{"open", SwaggerConfig{Enabled: true}, "10.0.0.1:1234", http.StatusOK},
		{"exact ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1234", http.StatusOK},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "192.168.4.20:1234", http.StatusOK},
		{"ip rejected", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1", "192.168.0.0/16"}}, "172.16.0.5:1234", http.StatusForbidden},
		{"invalid entries ignored", SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip", "300.1.1.1/8"}}, "10.0.0.1:1234", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swaggerRequest(swaggerRouter(tt.cfg, nil), tt.remoteAddr, ""))
		})
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService)

	router := swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, authenticate(jwtService))

	assert.Equal(t, http.StatusUnauthorized, swaggerRequest(router, "10.0.0.1:1234", ""))
	assert.Equal(t, http.StatusOK, swaggerRequest(router, "10.0.0.1:1234", pair.AccessToken))
}
