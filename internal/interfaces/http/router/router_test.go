package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve registers the group under /api/v1 and performs the request.
func serve(g *DomainGroup, method, path string) *httptest.ResponseRecorder {
	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())

	r.Register(NewDomainGroup("vehicles", "/vehicles"))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("system", "/system")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})

	t.Run("registers routes for each method", func(t *testing.T) {
		tests := []struct {
			method     string
			path       string
			wantStatus int
		}{
			{"GET", "/api/v1/leads/items", http.StatusOK},
			{"POST", "/api/v1/leads/items", http.StatusCreated},
			{"PUT", "/api/v1/leads/items/123", http.StatusOK},
			{"PATCH", "/api/v1/leads/items/123", http.StatusOK},
			{"DELETE", "/api/v1/leads/items/123", http.StatusNoContent},
		}

		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				g := NewDomainGroup("leads", "/leads")
				handler := func(c *gin.Context) { c.Status(tt.wantStatus) }
				switch tt.method {
				case "GET":
					g.GET("/items", handler)
				case "POST":
					g.POST("/items", handler)
				case "PUT":
					g.PUT("/items/:id", handler)
				case "PATCH":
					g.PATCH("/items/:id", handler)
				case "DELETE":
					g.DELETE("/items/:id", handler)
				}

				w := serve(g, tt.method, tt.path)
				assert.Equal(t, tt.wantStatus, w.Code)
			})
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		g := NewDomainGroup("contracts", "/contracts")
		g.Use(func(c *gin.Context) {
			c.Header("X-Request-Source", "back-office")
			c.Next()
		})
		g.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := serve(g, "GET", "/api/v1/contracts")
		assert.Equal(t, "back-office", w.Header().Get("X-Request-Source"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("catalog", "/catalog")

		vehicles := g.Group("vehicles", "/vehicles")
		vehicles.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "vehicles list")
		})

		inquiries := g.Group("inquiries", "/inquiries")
		inquiries.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "inquiries list")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		for path, want := range map[string]string{
			"/api/v1/catalog/vehicles":  "vehicles list",
			"/api/v1/catalog/inquiries": "inquiries list",
		} {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, want, w.Body.String())
		}
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	inventory := NewDomainGroup("inventory", "/vehicles")
	inventory.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "vehicles")
	})

	partner := NewDomainGroup("partner", "/customers")
	partner.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "customers")
	})

	r.Register(inventory).Register(partner)
	r.Setup()

	for path, want := range map[string]string{
		"/api/v1/vehicles":  "vehicles",
		"/api/v1/customers": "customers",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("invoices", "/invoices")
	g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("", func(c *gin.Context) { c.String(http.StatusOK, "create") }).
		POST("/:id/issue", func(c *gin.Context) { c.String(http.StatusOK, "issue") })

	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/invoices"},
		{"POST", "/api/v1/invoices"},
		{"POST", "/api/v1/invoices/123/issue"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
	}
}
