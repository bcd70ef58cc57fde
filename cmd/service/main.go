package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cconley717/contact-keeper-manager/internal/config"
	"github.com/cconley717/contact-keeper-manager/internal/logger"
	"github.com/cconley717/contact-keeper-manager/internal/service"
	"github.com/cconley717/contact-keeper-manager/internal/store"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=app DBPWD=secret DBHOST=localhost GIN_MODE=release go run main.go
func main() {
	cfg := config.Load()

	development := !strings.EqualFold(os.Getenv("GIN_MODE"), "release")
	log, err := logger.New(development)
	if err != nil {
		fmt.Println("could not initialize logger", err)
		os.Exit(1)
	}
	defer log.Sync()

	sqlDB, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatal("could not open database", zap.Error(err))
	}
	st := store.New(sqlDB)
	defer st.Close()

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := service.New(st, cfg, log).SetupHttpRouter()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
	log.Info("listening", zap.Int("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
