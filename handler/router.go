package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library/domain"
	"library/log"
	"library/repository"
)

const pingTimeout = 2 * time.Second

type UserService interface {
	Create(ctx context.Context, cmd domain.CreateUser) (domain.User, error)
	List(ctx context.Context) ([]domain.UserWithBooks, error)
	Get(ctx context.Context, userID uint) (domain.UserWithBooks, error)
	Borrow(ctx context.Context, userID, bookID uint) (domain.BorrowResult, error)
	Return(ctx context.Context, userID, bookID uint, score *int) (domain.ReturnResult, error)
}

type BookService interface {
	Create(ctx context.Context, cmd domain.CreateBook) (domain.Book, error)
	List(ctx context.Context) ([]domain.BookWithRating, error)
	Get(ctx context.Context, bookID uint) (domain.BookDetail, error)
}

type Options struct {
	Users UserService
	Books BookService
	DB    repository.Pinger

	// Development adds internal error details to 500 responses.
	Development bool
	// RequestTimeout bounds the service call of every API request.
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine serving the library API.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(),
		recovery(opts.Development),
		renderErrors(opts.Development),
	)
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  statusFail,
			"message": fmt.Sprintf("Can't find %s on this server", c.Request.URL.RequestURI()),
		})
	})
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  statusSuccess,
			"message": "Welcome to Library Management API",
		})
	})
	router.GET("/ping", ping(opts.DB))

	users := &userHandler{service: opts.Users, timeout: opts.RequestTimeout}
	router.POST("/users", users.create)
	router.GET("/users", users.list)
	router.GET("/users/:id", users.get)
	router.POST("/users/:id/borrow/:bookId", users.borrow)
	router.POST("/users/:id/return/:bookId", users.returnBook)

	books := &bookHandler{service: opts.Books, timeout: opts.RequestTimeout}
	router.POST("/books", books.create)
	router.GET("/books", books.list)
	router.GET("/books/:id", books.get)

	return router
}

func ping(db repository.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.GetLogger(ctx).WithError(err).Warn("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  statusError,
				"message": "Database unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	}
}
