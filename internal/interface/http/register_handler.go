package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-registration/pkg/response"
	"github.com/oksasatya/go-ddd-user-registration/pkg/validation"
)

type RegisterHandler struct {
	UseCase *application.RegisterUseCase
	Logger  *logrus.Logger
}

func NewRegisterHandler(uc *application.RegisterUseCase, logger *logrus.Logger) *RegisterHandler {
	return &RegisterHandler{UseCase: uc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// userResponse is the outward view of a user; it never carries the password hash.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Register POST /api/register {name, email, password}
func (h *RegisterHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ctx := helpers.WithClientMeta(c.Request.Context(), helpers.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	out, err := h.UseCase.Execute(ctx, application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrUserAlreadyExists) {
			response.Error[any](c, http.StatusConflict, "email already registered", gin.H{"email": application.NormalizeEmail(req.Email)})
			return
		}
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"password": "is too long"})
			return
		}
		if h.Logger != nil {
			helpers.LogError(h.Logger, "registration failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		}
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	response.Success(c, http.StatusCreated, toUserResponse(out.User), "user registered", nil)
}
