package cloner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ec2cloner/configuration"
)

const (
	packageName = "cloner"
)

// CloneService sequences the clone pipeline: resolve image, fetch the source
// descriptor, sanitize, merge overrides, launch. No stage recovers from a
// failure and nothing created before a failure is cleaned up; the first error
// aborts the run and surfaces to the caller.
type CloneService struct {
	awsClient AWSClient
	config    *configuration.Config
	logger    *zap.Logger
}

// NewCloneService creates a new clone service
func NewCloneService(awsClient AWSClient, config *configuration.Config, logger *zap.Logger) *CloneService {
	return &CloneService{
		awsClient: awsClient,
		config:    config,
		logger:    logger.With(zap.String("package", packageName)),
	}
}

// Run executes the clone pipeline and returns the new instance id
func (s *CloneService) Run(ctx context.Context) (string, error) {
	overrides := s.config.Overrides

	overrideImageID := ""
	if overrides != nil {
		overrideImageID = overrides.ImageID
	}

	imageID, err := ResolveImage(ctx, s.awsClient, s.config.SourceInstance, overrideImageID,
		time.Duration(s.config.PollInterval)*time.Second, s.config.MaxPollAttempts)
	if err != nil {
		return "", err
	}
	s.logger.Info("Image resolved",
		zap.String("operation", "image_resolve"),
		zap.String("image_id", imageID),
	)

	descriptor, err := s.awsClient.GetInstanceDescriptor(ctx, s.config.SourceInstance)
	if err != nil {
		return "", err
	}
	s.logger.Info("Source configuration fetched",
		zap.String("operation", "fetch_source"),
		zap.String("source_instance", s.config.SourceInstance),
	)

	spec, err := Sanitize(descriptor, s.config.SourceInstance)
	if err != nil {
		return "", err
	}

	merged := Merge(spec, imageID, overrides)

	s.logger.Info("Launching new instance",
		zap.String("operation", "launch"),
		zap.String("image_id", merged.ImageID),
	)
	instanceID, err := s.awsClient.RunInstance(ctx, merged)
	if err != nil {
		return "", err
	}

	s.logger.Info("New instance launched",
		zap.String("operation", "launch_complete"),
		zap.String("instance_id", instanceID),
	)

	return instanceID, nil
}
