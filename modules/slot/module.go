package slot

import (
	"baybook/core/database"
	"baybook/core/middleware"
	"baybook/modules/slot/controller"
	"baybook/modules/slot/repository"
	"baybook/modules/slot/router"
	"baybook/modules/slot/service"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Repository repository.SlotRepositoryInterface
	Service    service.SlotServiceInterface
}

func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) *Module {
	slotRepo := repository.NewSlotRepository(db)
	slotService := service.NewSlotService(slotRepo)
	slotController := controller.NewSlotController(slotService)

	router.RegisterRoutes(e, slotController, mw)

	return &Module{Repository: slotRepo, Service: slotService}
}
