package handlers

import (
	"net/http"
	"strconv"

	"portfolio/internal/service"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// updateUserRequest leaves absent fields untouched.
type updateUserRequest struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// @Summary  Register a user (the first account becomes admin)
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      signUpRequest  true  "credentials"
// @Success  201   {object}  models.User
// @Failure  400   {object}  map[string]string
// @Failure  409   {object}  map[string]string
// @Router   /api/auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	u, err := h.services.SignUp(c.Request.Context(), service.SignUpInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", input.Username, "err", err)
		}
		h.respondError(c, "auth_sign_up_failed", err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// @Summary  Log in and receive a JWT
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      loginRequest  true  "credentials"
// @Success  200   {object}  map[string]string  "token"
// @Failure  401   {object}  map[string]string
// @Router   /api/auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_login_failed", "username", input.Username, "err", err)
		}
		h.respondError(c, "auth_login_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary   Current user
// @Tags      auth
// @Produce   json
// @Success   200  {object}  models.User
// @Failure   401  {object}  map[string]string
// @Router    /api/auth/me [get]
// @Security  BearerAuth
func (h *Handler) me(c *gin.Context) {
	u, err := h.services.GetUser(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		h.respondError(c, "auth_me_failed", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary   List users
// @Tags      users
// @Produce   json
// @Success   200  {array}   models.User
// @Failure   403  {object}  map[string]string
// @Router    /api/users [get]
// @Security  BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "users_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary   Get a user
// @Tags      users
// @Produce   json
// @Param     id   path      int  true  "user id"
// @Success   200  {object}  models.User
// @Failure   404  {object}  map[string]string
// @Router    /api/users/{id} [get]
// @Security  BearerAuth
func (h *Handler) getUser(c *gin.Context) {
	id, ok := h.intParam(c, "id")
	if !ok {
		return
	}
	u, err := h.services.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "users_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary   Update a user
// @Tags      users
// @Accept    json
// @Produce   json
// @Param     id    path      int                true  "user id"
// @Param     body  body      updateUserRequest  true  "changes"
// @Success   200   {object}  models.User
// @Failure   400   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Router    /api/users/{id} [put]
// @Security  BearerAuth
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := h.intParam(c, "id")
	if !ok {
		return
	}
	var input updateUserRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	u, err := h.services.UpdateUser(c.Request.Context(), id, service.UserUpdate{
		Email:    input.Email,
		Role:     input.Role,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, "users_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary   Delete a user
// @Tags      users
// @Param     id  path  int  true  "user id"
// @Success   204
// @Failure   400  {object}  map[string]string
// @Failure   404  {object}  map[string]string
// @Router    /api/users/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.intParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, "users_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
