// Standalone read-only GraphQL server. Run with: go run ./cmd/graphql
package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
	graphqlApi "problemsolving.GO/api/graphql"
	"problemsolving.GO/config"
	"problemsolving.GO/model/entity"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadAppConfig()

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("db:", err)
	}
	if err := entity.AutoMigrate(db); err != nil {
		log.Fatal("migrate:", err)
	}

	// Queries never reach the shipment provider.
	deps := api.NewDeps(db, cfg, nil)
	e := echo.New()
	graphqlApi.RegisterGraphQLRoutes(e, deps)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy"}
	fig := figure.NewFigure("Missions GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", cfg.Port, cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
