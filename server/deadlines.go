package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/store"
	"github.com/labstack/echo/v4"
)

// DeadlineView is a stored record plus its derived state
type DeadlineView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Task      string          `json:"task"`
	CreatedAt string          `json:"createdAt"`
	DueDate   string          `json:"dueDate"`
	State     countdown.State `json:"state"`
}

// ListResponse is the response for GET /deadlines
type ListResponse struct {
	Now       string         `json:"now"`
	Deadlines []DeadlineView `json:"deadlines"`
}

// CreateRequest is the body of POST /deadlines
type CreateRequest struct {
	Name    string `json:"name"`
	Task    string `json:"task"`
	DueDate string `json:"dueDate"`
}

// UpdateRequest is the body of PUT /deadlines/:id; absent fields are kept
type UpdateRequest struct {
	Name    *string `json:"name"`
	Task    *string `json:"task"`
	DueDate *string `json:"dueDate"`
}

func viewOf(d model.Deadline, now time.Time) DeadlineView {
	return DeadlineView{
		ID:        d.ID,
		Name:      d.Name,
		Task:      d.Task,
		CreatedAt: model.FormatTime(d.CreatedAt),
		DueDate:   model.FormatTime(d.DueDate),
		State:     countdown.Derive(d, now),
	}
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func (s *Server) handleList(c echo.Context) error {
	now := s.clock.Now()
	deadlines := s.store.List()

	resp := ListResponse{
		Now:       model.FormatTime(now),
		Deadlines: make([]DeadlineView, 0, len(deadlines)),
	}
	for _, d := range deadlines {
		resp.Deadlines = append(resp.Deadlines, viewOf(d, now))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGet(c echo.Context) error {
	d, ok := s.store.Get(c.Param("id"))
	if !ok {
		return errorJSON(c, http.StatusNotFound, "deadline not found")
	}
	return c.JSON(http.StatusOK, viewOf(d, s.clock.Now()))
}

func (s *Server) handleCreate(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	due, err := model.ParseTime(req.DueDate)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "dueDate must be an ISO-8601 instant")
	}

	d, err := s.store.Add(c.Request().Context(), req.Name, req.Task, due)
	switch {
	case errors.Is(err, model.ErrInvalidDeadline):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error("Failed to add deadline", logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "failed to save deadline")
	}

	return c.JSON(http.StatusCreated, viewOf(d, s.clock.Now()))
}

func (s *Server) handleUpdate(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	patch := store.Patch{Name: req.Name, Task: req.Task}
	if req.DueDate != nil {
		due, err := model.ParseTime(*req.DueDate)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "dueDate must be an ISO-8601 instant")
		}
		patch.DueDate = &due
	}

	id := c.Param("id")
	d, found, err := s.store.Update(c.Request().Context(), id, patch)
	switch {
	case !found && err == nil:
		return errorJSON(c, http.StatusNotFound, "deadline not found")
	case errors.Is(err, model.ErrInvalidDeadline):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error("Failed to update deadline", logger.F("id", id), logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "failed to save deadline")
	}

	return c.JSON(http.StatusOK, viewOf(d, s.clock.Now()))
}

func (s *Server) handleDelete(c echo.Context) error {
	id := c.Param("id")
	removed, err := s.store.Remove(c.Request().Context(), id)
	if err != nil {
		s.log.Error("Failed to delete deadline", logger.F("id", id), logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "failed to save deadlines")
	}
	if !removed {
		return errorJSON(c, http.StatusNotFound, "deadline not found")
	}
	return c.NoContent(http.StatusNoContent)
}
