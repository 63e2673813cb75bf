package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFormatValidationErrors(t *testing.T) {
	type inquiryRequest struct {
		Email  string `json:"email" binding:"required,email"`
		Budget int    `json:"budget" binding:"required,min=500"`
	}

	SetupValidator()

	router := gin.New()
	router.POST("/api/v1/inquiries", func(c *gin.Context) {
		var req inquiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("lists each failed field", func(t *testing.T) {
		w := postJSON(router, "/api/v1/inquiries", `{"email": "not-an-email", "budget": 100}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("valid input passes through", func(t *testing.T) {
		w := postJSON(router, "/api/v1/inquiries", `{"email": "interessent@example.com", "budget": 25000}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type fieldRules struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		Len      string `binding:"len=5"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=NEW USED"`
		URL      string `binding:"url"`
	}

	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(fieldRules{
		Email: "invalid",
		Min:   "ab",
		Max:   "this is way too long",
		Len:   "ab",
		UUID:  "invalid",
		OneOf: "DEMO",
		URL:   "invalid",
	})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10 characters",
		"Len":      "Must be exactly 5 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: NEW USED",
		"URL":      "Invalid URL format",
	}

	for _, fieldErr := range err.(validator.ValidationErrors) {
		want, ok := expected[fieldErr.Field()]
		require.True(t, ok, "unexpected field %s", fieldErr.Field())
		assert.Equal(t, want, getValidationMessage(fieldErr))
	}
}

func TestHandleValidationError(t *testing.T) {
	type createLeadRequest struct {
		Name string `json:"name" binding:"required"`
	}

	router := gin.New()
	router.POST("/api/v1/leads", func(c *gin.Context) {
		var req createLeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
	})

	w := postJSON(router, "/api/v1/leads", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
