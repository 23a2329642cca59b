package routes

import (
	"backend/config"
	"backend/controllers"
	"backend/middlewares"
	"backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	// Engine components: stateless, constructed once and shared.
	rules := services.NewTriggerRuleSet(config.LoadRuleTables())
	classifier := services.NewIngredientClassifier(rules)
	alternatives := services.NewAlternativeSuggester()
	analyzer := services.NewPatternAnalyzer(rules)
	recEngine := services.NewRecommendationEngine()

	hub := services.NewRealtimeHub()
	alerts := services.NewAlertBus(config.DB, hub)

	authSvc := services.NewAuthService(config.DB)
	profileSvc := services.NewProfileService(config.DB, recEngine)
	scanSvc := services.NewScanService(config.DB, classifier, alternatives)
	symptomSvc := services.NewSymptomService(config.DB)
	learningSvc := services.NewLearningService(analyzer, recEngine)

	authCtl := controllers.NewAuthController(authSvc)
	profileCtl := controllers.NewProfileController(profileSvc)
	scanCtl := controllers.NewScanController(scanSvc, profileSvc, alerts)
	symptomCtl := controllers.NewSymptomController(symptomSvc)
	insightsCtl := controllers.NewInsightsController(learningSvc, scanSvc, symptomSvc, profileSvc, alerts)
	alertCtl := controllers.NewAlertController(alerts)
	realtimeCtl := controllers.NewRealtimeController(hub)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}

	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", profileCtl.Get)
		user.PUT("/profile", profileCtl.Update)
	}

	scan := r.Group("/scan")
	scan.Use(middlewares.AuthMiddleware())
	{
		scan.POST("/analyze", scanCtl.Analyze)
		scan.GET("/history", scanCtl.History)
		scan.POST("/:id/feedback", scanCtl.Feedback)
	}

	symptoms := r.Group("/symptoms")
	symptoms.Use(middlewares.AuthMiddleware())
	{
		symptoms.POST("", symptomCtl.Log)
		symptoms.GET("", symptomCtl.List)
	}

	insights := r.Group("/insights")
	insights.Use(middlewares.AuthMiddleware())
	{
		insights.GET("", insightsCtl.Get)
		insights.GET("/recommendations", insightsCtl.Recommendations)
		insights.POST("/recommendations/apply", insightsCtl.Apply)
	}

	alertGroup := r.Group("/alerts")
	alertGroup.Use(middlewares.AuthMiddleware())
	{
		alertGroup.GET("", alertCtl.List)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/alerts", realtimeCtl.AlertsWS)
	}

	return r
}
