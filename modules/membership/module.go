package membership

import (
	"baybook/core/config"
	"baybook/core/database"
	"baybook/core/middleware"
	"baybook/modules/billing"
	"baybook/modules/membership/controller"
	"baybook/modules/membership/repository"
	"baybook/modules/membership/router"
	"baybook/modules/membership/service"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Repository repository.UserRepositoryInterface
	Service    service.MembershipServiceInterface
}

func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware, cfg config.PaymentConfig) *Module {
	tierByPriceRef := billing.BindPriceRefs(cfg.PriceRefPar, cfg.PriceRefBirdie, cfg.PriceRefEagle)

	userRepo := repository.NewUserRepository(db)
	membershipService := service.NewMembershipService(userRepo, tierByPriceRef)
	membershipController := controller.NewMembershipController(membershipService)

	router.RegisterRoutes(e, membershipController, mw)

	return &Module{Repository: userRepo, Service: membershipService}
}
