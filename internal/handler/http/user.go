package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListRoles(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, users)
}

func (h *userHandlerImpl) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.userService.ListRoles(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, roles)
}

func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	u, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, u)
}

func (h *userHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if !decodeJSON(w, r, &req, "CreateUser") {
		return
	}

	u, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", u)
}

func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !decodeJSON(w, r, &req, "UpdateUser") {
		return
	}
	req.ID = id

	u, err := h.userService.UpdateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", u)
}

func (h *userHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deactivated successfully", nil)
}
