// Package main library API.
//
// @title           Library Borrowing API
// @version         1.0
// @description     Library service (books, inventory, borrowings, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libraryapi/app/echoServer"
	authctrl "libraryapi/app/echoServer/controller/auth"
	bookctrl "libraryapi/app/echoServer/controller/book"
	borrowingctrl "libraryapi/app/echoServer/controller/borrowing"
	"libraryapi/app/echoServer/validation"
	"libraryapi/config"
	bookrepo "libraryapi/repository/book"
	borrowingrepo "libraryapi/repository/borrowing"
	userrepo "libraryapi/repository/user"
	authsvc "libraryapi/service/auth"
	booksvc "libraryapi/service/book"
	borrowingsvc "libraryapi/service/borrowing"
	"libraryapi/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := database.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	lr := borrowingrepo.New(db)

	// services
	as := authsvc.New(ur, authsvc.Config{
		Secret:          cfg.JWTSecret,
		AccessTTLHours:  cfg.AccessTTLHours,
		RefreshTTLHours: cfg.RefreshTTLHours,
	})
	bs := booksvc.New(br)
	ls := borrowingsvc.New(lr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowingC := &borrowingctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New(v)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status": "ok",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrowing: borrowingC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
