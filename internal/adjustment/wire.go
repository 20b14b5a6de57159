package adjustment

import (
	"go.uber.org/zap"

	"posterminal/internal/adjustment/controller"
	"posterminal/internal/adjustment/usecase"
	"posterminal/internal/config"
)

func NewModule(
	backend usecase.Backend,
	refresher usecase.Refresher,
	recorder usecase.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *controller.AdjustmentController {
	uc := usecase.NewAdjustmentUseCase(backend, refresher, recorder, logger, cfg.Inventory.DefaultLocation)
	return controller.NewAdjustmentController(uc, logger)
}
