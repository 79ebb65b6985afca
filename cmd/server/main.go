package main

import (
	"log"
	"net/http"

	_ "userdir/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"userdir/internal/auth"
	"userdir/internal/cache"
	"userdir/internal/config"
	"userdir/internal/db"
	"userdir/internal/guard"
	"userdir/internal/handler"
	"userdir/internal/model"
	"userdir/internal/repository"
	"userdir/internal/router"
	"userdir/internal/service"
)

// @title User Directory API
// @version 1.0
// @description User registration, session-token authentication, and admin-gated user management.
// @host localhost:3000
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	tokenService := auth.NewTokenService(cfg.JWTSecret)

	directory := service.NewDirectoryService(userRepo, cacheClient)
	sessions := service.NewSessionService(userRepo, tokenService)

	guards := guard.New(tokenService, directory)
	userHandler := handler.NewUserHandler(directory)
	sessionHandler := handler.NewSessionHandler(sessions)

	router.Register(e, guards, userHandler, sessionHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
