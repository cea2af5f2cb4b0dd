//go:build !cli

package main

import (
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"problemsolving.GO/api"
	_ "problemsolving.GO/api/check"
	_ "problemsolving.GO/api/graphql"
	_ "problemsolving.GO/api/imports"
	_ "problemsolving.GO/api/inventory"
	_ "problemsolving.GO/api/mission"
	_ "problemsolving.GO/api/system"
	"problemsolving.GO/config"
	"problemsolving.GO/model/entity"
	"problemsolving.GO/service/shipment"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	// Initialize Redis
	config.InitRedis()
	redisStatus := "Redis not configured or not reachable, shipment cache is in-process."
	if config.RedisClient != nil {
		err := config.RedisClient.Ping(config.RedisCtx()).Err()
		if err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			redisStatus = "Redis configured but not reachable, shipment cache is in-process."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")
	if err := entity.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		log.Fatalf("companies: %v", err)
	}
	log.Printf("Serving %d companies, default %q", len(companies), cfg.DefaultCompany)
	deps := api.NewDeps(db, cfg, shipment.FromConfig(cfg, companies, config.RedisClient))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	api.ApplyRoutes(e, deps)
	api.ApplyModules(e.Group("/api"), deps)

	log.Printf("%s running on :%s (%s)", cfg.AppName, cfg.Port, cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
