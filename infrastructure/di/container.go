package di

import (
	"go.uber.org/zap"

	"lifelog-backend/infrastructure/config"
	"lifelog-backend/interfaces/http/rest"
)

// Container holds the application's wired dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router *rest.Router
}
