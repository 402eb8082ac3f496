package booking

import (
	"baybook/core/database"
	"baybook/core/middleware"
	"baybook/modules/booking/controller"
	"baybook/modules/booking/repository"
	"baybook/modules/booking/router"
	"baybook/modules/booking/service"
	"baybook/modules/booking/task"
	membershipservice "baybook/modules/membership/service"
	notificationservice "baybook/modules/notification/service"
	"baybook/modules/payment"
	slotrepository "baybook/modules/slot/repository"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Service        service.BookingServiceInterface
	CleanupHandler *task.CleanupHandler
}

func Init(
	e *echo.Echo,
	db database.Database,
	mw *middleware.Middleware,
	slotRepo slotrepository.SlotRepositoryInterface,
	membershipService membershipservice.MembershipServiceInterface,
	notificationService notificationservice.NotificationServiceInterface,
	gateway payment.Gateway,
) *Module {
	bookingRepo := repository.NewBookingRepository(db)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, membershipService, notificationService, gateway)
	bookingController := controller.NewBookingController(bookingService)

	router.RegisterRoutes(e, bookingController, mw)

	return &Module{
		Service:        bookingService,
		CleanupHandler: task.NewCleanupHandler(bookingService),
	}
}
