package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterConfig holds the optional surfaces of the router.
type RouterConfig struct {
	// SwaggerSpecPath is the OpenAPI document served under /docs/swagger.yaml. Empty disables Swagger UI.
	SwaggerSpecPath string
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	EnablePprof    bool
}

// SetupRouter configures and returns the Gin engine.
func SetupRouter(cfg RouterConfig, portfolioHandler *PortfolioHandler, marketHandler *MarketHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/markets", marketHandler.GetMarketsHandler)
		v1.GET("/overview", marketHandler.GetOverviewHandler)
		v1.GET("/coins/:id", marketHandler.GetCoinHandler)
		v1.GET("/selection", marketHandler.GetSelectionHandler)

		v1.GET("/portfolio", portfolioHandler.GetPortfolioHandler)
		v1.DELETE("/portfolio", portfolioHandler.ClearPortfolioHandler)
		v1.POST("/portfolio/holdings", portfolioHandler.AddHoldingHandler)
		v1.PUT("/portfolio/holdings/:id", portfolioHandler.SetQuantityHandler)
		v1.DELETE("/portfolio/holdings/:id", portfolioHandler.RemoveHoldingHandler)
	}

	if cfg.SwaggerSpecPath != "" {
		router.StaticFile("/docs/swagger.yaml", cfg.SwaggerSpecPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	if cfg.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		}
	}

	return router
}
