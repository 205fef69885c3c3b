package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

// UserHandler handles the user directory and the admin user management
// endpoints. The directory is open to any authenticated caller; everything
// under /admin is gated by RequireAdmin in the router.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

// updateUserRequest is the partial admin update payload. Present fields must
// pass the same rules as on create; absent fields are left untouched.
type updateUserRequest struct {
	Name     domain.Optional[string] `json:"name"`
	Password domain.Optional[string] `json:"password"`
	Role     domain.Optional[string] `json:"role"`
}

func (r updateUserRequest) validate() error {
	errs := domain.ValidationErrors{}

	if r.Name.Set {
		switch {
		case r.Name.Value == nil || *r.Name.Value == "":
			errs.Add("name", "The name field is required.")
		case utf8.RuneCountInString(*r.Name.Value) > 255:
			errs.Add("name", "The name field must not be greater than 255 characters.")
		}
	}
	if r.Password.Set {
		switch {
		case r.Password.Value == nil || *r.Password.Value == "":
			errs.Add("password", "The password field is required.")
		case utf8.RuneCountInString(*r.Password.Value) < 6:
			errs.Add("password", "The password field must be at least 6 characters.")
		}
	}
	if r.Role.Set {
		if r.Role.Value == nil || (*r.Role.Value != string(domain.RoleAdmin) && *r.Role.Value != string(domain.RoleUser)) {
			errs.Add("role", "The selected role is invalid.")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Directory returns the minimal user list for assignee pickers.
func (h *UserHandler) Directory(c echo.Context) error {
	users, err := h.users.Directory(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// AdminList returns all users, newest first.
func (h *UserHandler) AdminList(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// AdminCreate stores a new user. The password is hashed and never returned.
func (h *UserHandler) AdminCreate(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// AdminUpdate applies a partial update to a user. There is deliberately no
// guard against self-demotion or removing the last admin.
func (h *UserHandler) AdminUpdate(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", domain.ErrNotFound)
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	in := service.UpdateUserInput{}
	if req.Name.Set {
		in.Name = req.Name.Value
	}
	if req.Password.Set {
		in.Password = req.Password.Value
	}
	if req.Role.Set {
		role := domain.Role(*req.Role.Value)
		in.Role = &role
	}

	user, err := h.users.Update(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
