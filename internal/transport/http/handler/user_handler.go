package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-service/internal/domain"
	"user-service/internal/transport/http/ez"
)

// 用例端口；*usecase.X 直接满足
type (
	UserLister interface {
		Execute(ctx context.Context) ([]domain.User, error)
	}
	UserCreator interface {
		Execute(ctx context.Context, email, name, password string) (domain.User, error)
	}
	UserDeleter interface {
		Execute(ctx context.Context, email string) error
	}
)

// UserDTO 对外表示，永远不带密码
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toDTO(u domain.User) UserDTO {
	return UserDTO{ID: u.ID().String(), Name: u.Name(), Email: u.Email().String()}
}

type createUserReq struct {
	Email    string `json:"email"    binding:"max=191"`
	Name     string `json:"name"     binding:"max=255"`
	Password string `json:"password" binding:"max=1024"`
}

type deleteUserURI struct {
	Email string `uri:"email" binding:"required"`
}

type UserHandler struct {
	list   UserLister
	create UserCreator
	delete UserDeleter
	mapErr ez.ErrorMapper
}

func NewUserHandler(list UserLister, create UserCreator, del UserDeleter, mapErr ez.ErrorMapper) *UserHandler {
	return &UserHandler{list: list, create: create, delete: del, mapErr: mapErr}
}

func (h *UserHandler) Priority() int { return 10 }

// MountAPI 挂在 /api/v1 下
func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez.RegisterAction(api, h.mapErr, ez.Action[struct{}, []UserDTO]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]UserDTO, error) {
			us, err := h.list.Execute(c.Request.Context())
			if err != nil {
				return nil, err
			}
			out := make([]UserDTO, 0, len(us))
			for _, u := range us {
				out = append(out, toDTO(u))
			}
			return out, nil
		},
	})

	ez.RegisterAction(api, h.mapErr, ez.Action[createUserReq, UserDTO]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createUserReq) (UserDTO, error) {
			u, err := h.create.Execute(c.Request.Context(), in.Email, in.Name, in.Password)
			if err != nil {
				return UserDTO{}, err
			}
			return toDTO(u), nil
		},
	})

	ez.RegisterAction(api, h.mapErr, ez.Action[deleteUserURI, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:email",
		Binder: ez.BindURI,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, in *deleteUserURI) (struct{}, error) {
			return struct{}{}, h.delete.Execute(c.Request.Context(), in.Email)
		},
	})
}
