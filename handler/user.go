package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library/domain"
)

type userHandler struct {
	service UserService
	timeout time.Duration
}

func (h *userHandler) create(c *gin.Context) {
	var cmd domain.CreateUser
	if err := c.ShouldBindJSON(&cmd); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	user, err := h.service.Create(ctx, cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"user": user})
}

func (h *userHandler) list(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	users, err := h.service.List(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondList(c, "users", users, len(users))
}

func (h *userHandler) get(c *gin.Context) {
	userID, err := pathID(c, "id", "User")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	user, err := h.service.Get(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}

func (h *userHandler) borrow(c *gin.Context) {
	userID, bookID, err := loanIDs(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.Borrow(ctx, userID, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": result})
}

func (h *userHandler) returnBook(c *gin.Context) {
	userID, bookID, err := loanIDs(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// The body is optional; an empty one returns the book without a score.
	var body domain.ReturnBook
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(invalidBody(err))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.Return(ctx, userID, bookID, body.Score)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": result})
}

func loanIDs(c *gin.Context) (uint, uint, error) {
	userID, err := pathID(c, "id", "User")
	if err != nil {
		return 0, 0, err
	}
	bookID, err := pathID(c, "bookId", "Book")
	if err != nil {
		return 0, 0, err
	}
	return userID, bookID, nil
}
