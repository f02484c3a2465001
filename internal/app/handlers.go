package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/levelup-backend/internal/http/handlers"
	"github.com/yungbote/levelup-backend/internal/platform/cache"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

type Handlers struct {
	Health        *httpH.HealthHandler
	Catalog       *httpH.CatalogHandler
	Progress      *httpH.ProgressHandler
	Exam          *httpH.ExamHandler
	AdminCatalog  *httpH.AdminCatalogHandler
	AdminQuestion *httpH.AdminQuestionHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, c cache.Cache, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(log, db, c),
		Catalog:       httpH.NewCatalogHandler(log, services.Learning),
		Progress:      httpH.NewProgressHandler(log, services.Learning),
		Exam:          httpH.NewExamHandler(log, services.Learning),
		AdminCatalog:  httpH.NewAdminCatalogHandler(log, services.Learning),
		AdminQuestion: httpH.NewAdminQuestionHandler(log, services.Learning),
	}
}
