// Package server HTTP API сервиса сравнения коммерческих предложений.
// Проект = один BOQ плюс файлы предложений поставщиков; сравнение
// строит сводную таблицу цен по позициям BOQ.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emrelibot-hash/supplypilot-bot/alignment"
	"github.com/emrelibot-hash/supplypilot-bot/database"
	"github.com/emrelibot-hash/supplypilot-bot/internal/config"
	"github.com/emrelibot-hash/supplypilot-bot/rates"
	"github.com/emrelibot-hash/supplypilot-bot/server/middleware"
	"github.com/emrelibot-hash/supplypilot-bot/translate"
)

// Server HTTP сервер сравнения предложений
type Server struct {
	config     *config.Config
	db         *database.ProjectsDB
	translator translate.Translator
	alignCfg   alignment.Config
	rates      *rates.Cache
	httpServer *http.Server
}

// NewServer собирает сервер из конфигурации
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.NewProjectsDBWithConfig(cfg.DatabasePath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open projects db: %w", err)
	}

	var translator translate.Translator = translate.Identity{}
	if cfg.TranslateEnabled {
		translator = translate.NewOpenAIClient(translate.OpenAIConfig{
			BaseURL:           cfg.TranslateBaseURL,
			APIKey:            cfg.TranslateAPIKey,
			Model:             cfg.TranslateModel,
			RequestsPerSecond: cfg.TranslateRPS,
			Timeout:           cfg.TranslateTimeout,
		})
	}

	alignCfg := alignment.DefaultConfig()
	alignCfg.FuzzyThreshold = cfg.FuzzyThreshold

	Logger = NewLogger(cfg.LogLevel)

	return &Server{
		config:     cfg,
		db:         db,
		translator: translator,
		alignCfg:   alignCfg,
		rates:      rates.NewCache(rates.NewFetcher(cfg.RatesURL), cfg.RatesTTL),
	}, nil
}

// Router собирает gin-роутер со всеми маршрутами
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinLoggerMiddleware(Logger))
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.MaxMultipartMemory = s.config.MaxUploadSize

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects", s.handleListProjects)
		api.GET("/projects/:id", s.handleGetProject)
		api.POST("/projects/:id/rfq", s.handleUploadRFQ)
		api.GET("/projects/:id/files", s.handleListFiles)
		api.POST("/projects/:id/compare", s.handleCompare)
		api.GET("/projects/:id/result", s.handleGetResult)
		api.GET("/projects/:id/result.xlsx", s.handleExportXLSX)
		api.GET("/rates/:code", s.handleGetRate)
	}

	return router
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // разбор больших PDF занимает время
		IdleTimeout:  120 * time.Second,
	}

	Logger.Info("server starting", "port", s.config.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	Logger.Info("initiating graceful shutdown")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
	}
	return s.db.Close()
}
