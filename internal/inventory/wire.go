package inventory

import (
	"go.uber.org/zap"

	"posterminal/internal/config"
	"posterminal/internal/domain"
	"posterminal/internal/dto"
	"posterminal/internal/inventory/controller"
	"posterminal/internal/inventory/service"
	"posterminal/internal/inventory/usecase"
)

func NewRefresher(backend service.Backend, recorder service.Recorder, logger *zap.Logger) *service.RefreshService {
	return service.NewRefreshService(backend, recorder, logger, dto.ProductQuery{})
}

func NewModule(refresher *service.RefreshService, cfg *config.Config, logger *zap.Logger) *controller.InventoryController {
	uc := usecase.NewInventoryUseCase(refresher, domain.StockThresholds{InStockAbove: cfg.Inventory.InStockAbove}, logger)
	return controller.NewInventoryController(uc, logger)
}
