package handlers

import (
	"net/http"

	dom "github.com/sanioooook/TodoApp/internal/domain"
	"github.com/sanioooook/TodoApp/internal/dto"
	"github.com/sanioooook/TodoApp/internal/identity"
	"github.com/sanioooook/TodoApp/internal/service"

	"github.com/gin-gonic/gin"
)

type TodoListHandler struct {
	svc *service.TodoListService
}

func NewTodoListHandler(svc *service.TodoListService) *TodoListHandler {
	return &TodoListHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo list owned by the caller
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string                  true  "Caller id"
// @Param        body       body      dto.CreateListRequest  true  "List body"
// @Success      201        {object}  dto.ListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /lists [post]
func (h *TodoListHandler) Create(c *gin.Context) {
	var req dto.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.Create(c.Request.Context(), identity.UserIDFromContext(c), req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, listToResponse(l))
}

// List godoc
// @Summary      Lists the caller owns or is shared on, newest first
// @Tags         lists
// @Produce      json
// @Param        X-User-Id  header    string  true   "Caller id"
// @Param        skip       query     int     false  "Offset"     default(0)
// @Param        take       query     int     false  "Page size"  default(20)
// @Success      200        {object}  dto.ListListsResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /lists [get]
func (h *TodoListHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.ListForUser(c.Request.Context(), identity.UserIDFromContext(c), q.Skip, q.Take)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListListsResponse{Items: listsToResponses(list), Skip: q.Skip, Take: q.Take})
}

// GetByID godoc
// @Summary      Get a list the caller can see
// @Tags         lists
// @Produce      json
// @Param        X-User-Id  header    string  true  "Caller id"
// @Param        id         path      string  true  "List ID"
// @Success      200        {object}  dto.ListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /lists/{id} [get]
func (h *TodoListHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	l, err := h.svc.Get(c.Request.Context(), id, identity.UserIDFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listToResponse(l))
}

// Update godoc
// @Summary      Rename a list
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string                  true  "Caller id"
// @Param        id         path      string                  true  "List ID"
// @Param        body       body      dto.UpdateListRequest  true  "New title"
// @Success      200        {object}  dto.ListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /lists/{id} [put]
func (h *TodoListHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.svc.Update(c.Request.Context(), id, identity.UserIDFromContext(c), req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listToResponse(l))
}

// Delete godoc
// @Summary      Delete a list (owner only)
// @Tags         lists
// @Param        X-User-Id  header  string  true  "Caller id"
// @Param        id         path    string  true  "List ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /lists/{id} [delete]
func (h *TodoListHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, identity.UserIDFromContext(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Share godoc
// @Summary      Share a list with another user
// @Tags         lists
// @Accept       json
// @Param        X-User-Id  header  string            true  "Caller id"
// @Param        id         path    string            true  "List ID"
// @Param        body       body    dto.ShareRequest  true  "Target user"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /lists/{id}/share [post]
func (h *TodoListHandler) Share(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Share(c.Request.Context(), id, identity.UserIDFromContext(c), req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unshare godoc
// @Summary      Remove a user from a list's shares
// @Tags         lists
// @Accept       json
// @Param        X-User-Id  header  string            true  "Caller id"
// @Param        id         path    string            true  "List ID"
// @Param        body       body    dto.ShareRequest  true  "Target user"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /lists/{id}/unshare [post]
func (h *TodoListHandler) Unshare(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Unshare(c.Request.Context(), id, identity.UserIDFromContext(c), req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listToResponse(l dom.TodoList) dto.ListResponse {
	shares := make([]dto.ShareResponse, len(l.Shares))
	for i, s := range l.Shares {
		shares[i] = dto.ShareResponse{UserID: s.UserID, FullName: s.UserFullName, CreatedAt: s.CreatedAt}
	}
	return dto.ListResponse{
		ID:        l.ID,
		Title:     l.Title,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		Shares:    shares,
	}
}

func listsToResponses(list []dom.TodoList) []dto.ListResponse {
	out := make([]dto.ListResponse, len(list))
	for i := range list {
		out[i] = listToResponse(list[i])
	}
	return out
}
