package checkout

import (
	"go.uber.org/zap"

	cartservice "posterminal/internal/cart/service"
	"posterminal/internal/checkout/controller"
	"posterminal/internal/checkout/usecase"
	"posterminal/internal/config"
)

func NewModule(
	carts *cartservice.CartService,
	backend usecase.Backend,
	recorder usecase.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *controller.CheckoutController {
	uc := usecase.NewCheckoutUseCase(carts, backend, recorder, logger, cfg.Checkout.PaymentMethods, cfg.Checkout.Timeout)
	return controller.NewCheckoutController(uc, logger)
}
