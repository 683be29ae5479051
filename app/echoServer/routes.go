package echoServer

import (
	"github.com/labstack/echo/v4"

	"libraryapi/app/echoServer/controller/auth"
	"libraryapi/app/echoServer/controller/book"
	"libraryapi/app/echoServer/controller/borrowing"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrowing *borrowing.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/users/token/refresh", c.Auth.Refresh)

	// catalog reads are open
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	authed := e.Group("", JWTAuth(c.JWTSecret)...)

	authed.GET("/users/me", c.Auth.Me)

	// catalog mutations (staff checked in the service)
	authed.POST("/books", c.Book.Create)
	authed.PUT("/books/:id", c.Book.Update)
	authed.PATCH("/books/:id", c.Book.Update)
	authed.DELETE("/books/:id", c.Book.Delete)

	// Borrowings
	authed.GET("/borrowings", c.Borrowing.List)
	authed.POST("/borrowings", c.Borrowing.Create)
	authed.GET("/borrowings/:id", c.Borrowing.Detail)
	authed.PUT("/borrowings/:id", c.Borrowing.Update)
	authed.PATCH("/borrowings/:id", c.Borrowing.Update)
	authed.DELETE("/borrowings/:id", c.Borrowing.Delete)
	authed.POST("/borrowings/:id/return", c.Borrowing.Return)
}
