package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		allowed []string
		origin  string
		want    string
	}{
		{nil, "http://localhost:5173", "http://localhost:5173"},
		{[]string{"https://ide.forgecraft.dev"}, "https://ide.forgecraft.dev", "https://ide.forgecraft.dev"},
		{[]string{"https://ide.forgecraft.dev"}, "http://localhost:5173", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.allowed))
			r.GET("/api/tokens/balance", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tokens/balance", nil)
			req.Header.Set("Origin", tc.origin)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.want)
			}
		})
	}
}
