package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/media/uploads"
)

// ProvideUploadStorage provides the cover image storage.
func ProvideUploadStorage(i do.Injector) (*uploads.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := uploads.NewStorage(cfg.Uploads.Path)
	if err != nil {
		return nil, err
	}

	log.Info("Upload storage ready", "path", cfg.Uploads.Path)

	return storage, nil
}
