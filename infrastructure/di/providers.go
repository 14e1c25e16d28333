package di

import (
	appdynamo "localaws/application/dynamo"
	apps3 "localaws/application/s3"
	"localaws/infrastructure/config"
	apphttp "localaws/interfaces/http"
	dynamohttp "localaws/interfaces/http/dynamo"
	s3http "localaws/interfaces/http/s3"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DynamoProvider *appdynamo.Provider
	S3Provider     *apps3.Provider
	DynamoHandler  *dynamohttp.Handler
	S3Handler      *s3http.Handler
	Router         *apphttp.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideDynamoProvider creates the DynamoDB provider
func ProvideDynamoProvider(cfg *config.Config, logger *zap.Logger) *appdynamo.Provider {
	return appdynamo.NewProvider(cfg.Region, logger)
}

// ProvideS3Provider creates the S3 provider
func ProvideS3Provider(cfg *config.Config, logger *zap.Logger) *apps3.Provider {
	return apps3.NewProvider(cfg.Region, logger)
}

// ProvideDynamoHandler creates the DynamoDB HTTP handler
func ProvideDynamoHandler(provider *appdynamo.Provider, logger *zap.Logger) *dynamohttp.Handler {
	return dynamohttp.NewHandler(provider, logger)
}

// ProvideS3Handler creates the S3 HTTP handler
func ProvideS3Handler(provider *apps3.Provider, logger *zap.Logger) *s3http.Handler {
	return s3http.NewHandler(provider, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(dynamoHandler *dynamohttp.Handler, s3Handler *s3http.Handler, logger *zap.Logger, cfg *config.Config) *apphttp.Router {
	return apphttp.NewRouter(dynamoHandler, s3Handler, logger, cfg.EnableCORS)
}
