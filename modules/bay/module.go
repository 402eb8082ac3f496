package bay

import (
	"baybook/core/database"
	"baybook/core/middleware"
	"baybook/modules/bay/controller"
	"baybook/modules/bay/repository"
	"baybook/modules/bay/router"
	"baybook/modules/bay/service"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Service service.BayServiceInterface
}

func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) *Module {
	bayRepo := repository.NewBayRepository(db)
	bayService := service.NewBayService(bayRepo)
	bayController := controller.NewBayController(bayService)

	router.RegisterRoutes(e, bayController, mw)

	return &Module{Service: bayService}
}
