package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library/domain"
)

type bookHandler struct {
	service BookService
	timeout time.Duration
}

func (h *bookHandler) create(c *gin.Context) {
	var cmd domain.CreateBook
	if err := c.ShouldBindJSON(&cmd); err != nil {
		_ = c.Error(invalidBody(err))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.service.Create(ctx, cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"book": book})
}

func (h *bookHandler) list(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	books, err := h.service.List(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondList(c, "books", books, len(books))
}

func (h *bookHandler) get(c *gin.Context) {
	bookID, err := pathID(c, "id", "Book")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.service.Get(ctx, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, gin.H{"book": book})
}
