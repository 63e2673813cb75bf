package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	identityapp "github.com/dms/backend/internal/application/identity"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/auth"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAdminUser(t *testing.T) *identity.User {
	t.Helper()

	user, err := identity.NewUser("admin", "admin12345", identity.RoleAdmin)
	require.NoError(t, err)
	return user
}

func setupUserRouter(handler *UserHandler, jwtService *auth.JWTService) *gin.Engine {
	r := gin.New()

	group := r.Group("/api/v1/users")
	group.Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{JWTService: jwtService}),
		middleware.RequireRole(string(identity.RoleAdmin)),
	)
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.POST("/:id/deactivate", handler.Deactivate)
		group.PUT("/:id/password", handler.ResetPassword)
	}

	return r
}

func TestUserHandler_Create_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)

	userRepo.On("FindByUsername", mock.Anything, "s.fischer").Return(nil, shared.ErrNotFound)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	body, _ := json.Marshal(identityapp.CreateUserRequest{
		Username:    "s.fischer",
		Password:    "werkstatt23",
		Role:        "STAFF",
		DisplayName: "Sabine Fischer",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "s.fischer", data["username"])
	assert.Equal(t, "STAFF", data["role"])
	assert.Equal(t, "Sabine Fischer", data["display_name"])
	userRepo.AssertExpectations(t)
}

func TestUserHandler_Create_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	existing := newTestStaffUser(t)

	userRepo.On("FindByUsername", mock.Anything, "m.weber").Return(existing, nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	body, _ := json.Marshal(identityapp.CreateUserRequest{
		Username: "m.weber",
		Password: "werkstatt23",
		Role:     "STAFF",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	response := decodeResponse(t, w)
	errData := response["error"].(map[string]interface{})
	assert.Equal(t, "ALREADY_EXISTS", errData["code"])
}

func TestUserHandler_RequiresAdminRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	staff := newTestStaffUser(t)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, staff))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	unknownID := uuid.New()

	userRepo.On("FindByID", mock.Anything, unknownID).Return(nil, shared.ErrNotFound)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+unknownID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_List(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	staff := newTestStaffUser(t)

	userRepo.On("FindAll", mock.Anything, mock.Anything).Return([]identity.User{*admin, *staff}, nil)
	userRepo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&page_size=20", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
}

func TestUserHandler_Update(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	staff := newTestStaffUser(t)

	userRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	userRepo.On("Save", mock.Anything, staff).Return(nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	displayName := "Martin Weber"
	role := "ADMIN"
	body, _ := json.Marshal(identityapp.UpdateUserRequest{
		DisplayName: &displayName,
		Role:        &role,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+staff.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Martin Weber", data["display_name"])
	assert.Equal(t, "ADMIN", data["role"])
}

func TestUserHandler_Deactivate(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	staff := newTestStaffUser(t)

	userRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	userRepo.On("Save", mock.Anything, staff).Return(nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+staff.ID.String()+"/deactivate", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "deactivated", data["status"])
}

func TestUserHandler_ResetPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	staff := newTestStaffUser(t)

	userRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	userRepo.On("Save", mock.Anything, staff).Return(nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	body, _ := json.Marshal(identityapp.ResetPasswordRequest{NewPassword: "zurueckgesetzt9"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+staff.ID.String()+"/password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, staff.VerifyPassword("zurueckgesetzt9"))
}

func TestUserHandler_Delete(t *testing.T) {
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()
	admin := newTestAdminUser(t)
	staff := newTestStaffUser(t)

	userRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	userRepo.On("Delete", mock.Anything, staff.ID).Return(nil)

	handler := NewUserHandler(identityapp.NewUserService(userRepo, nil))
	router := setupUserRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+staff.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, admin))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	userRepo.AssertExpectations(t)
}
