package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"ec2cloner/awsd"
	"ec2cloner/cloner"
	"ec2cloner/configuration"
	"ec2cloner/errors"
	"ec2cloner/logger"
	"ec2cloner/profile"
)

const (
	packageName = "main"
)

func main() {
	// Initialize logger
	if err := logger.Initialize("info", "console"); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	log := zap.L().With(zap.String("package", packageName))

	// Load configuration from environment and command-line arguments
	config, err := configuration.Initialize(os.Args[1:])
	if err != nil {
		log.Error("Failed to load configuration",
			zap.String("operation", "config_load"),
			zap.Error(err),
		)
		if errors.Is(err, errors.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	// Re-initialize the logger with the configured level and encoding
	if err := logger.Initialize(config.LogLevel, config.LogEncoding); err != nil {
		log.Error("Failed to reconfigure logger",
			zap.String("operation", "logger_init"),
			zap.Error(err),
		)
		os.Exit(1)
	}
	log = zap.L().With(zap.String("package", packageName))

	// Layer clone-profile defaults under the command-line overrides
	if config.ProfilePath != "" {
		defaults, err := profile.Load(config.ProfilePath)
		if err != nil {
			log.Error("Failed to load clone profile",
				zap.String("operation", "profile_load"),
				zap.String("path", config.ProfilePath),
				zap.Error(err),
			)
			os.Exit(1)
		}
		config.Overrides = profile.Apply(config.Overrides, defaults)
	}

	// Create AWS client
	awsClient, err := awsd.NewEC2Client(config)
	if err != nil {
		log.Error("Failed to create AWS client",
			zap.String("operation", "aws_client_creation"),
			zap.Error(err),
		)
		os.Exit(1)
	}

	// Create clone service and run the pipeline
	cloneService := cloner.NewCloneService(awsClient, config, zap.L())

	instanceID, err := cloneService.Run(context.Background())
	if err != nil {
		log.Error("Clone pipeline failed",
			zap.String("operation", "clone_run"),
			zap.Error(err),
		)
		os.Exit(1)
	}

	log.Info("Clone complete",
		zap.String("operation", "clone_complete"),
		zap.String("source_instance", config.SourceInstance),
		zap.String("new_instance", instanceID),
	)
	fmt.Println(instanceID)
}
