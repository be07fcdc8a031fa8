package cloner

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"ec2cloner/errors"
)

// terminalFailureStates are image states that will never transition to
// available; polling past them would wait forever.
var terminalFailureStates = map[types.ImageState]bool{
	types.ImageStateFailed:       true,
	types.ImageStateError:        true,
	types.ImageStateInvalid:      true,
	types.ImageStateDeregistered: true,
	types.ImageStateDisabled:     true,
}

// ResolveImage obtains a ready-to-launch image id. When an override image id
// is supplied it is returned as-is with no AWS calls. Otherwise an AMI is
// captured from the source instance and its state polled until it becomes
// available, a terminal failure state is reached, or maxAttempts polls have
// been spent.
func ResolveImage(ctx context.Context, client AWSClient, sourceInstance, overrideImageID string, pollInterval time.Duration, maxAttempts int) (string, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "ResolveImage"),
	)

	if overrideImageID != "" {
		logger.Info("ImageId override supplied, skipping image capture",
			zap.String("operation", "image_resolve"),
			zap.String("image_id", overrideImageID),
		)
		return overrideImageID, nil
	}

	logger.Info("ImageId not specified, creating an AMI from the source instance",
		zap.String("operation", "image_create"),
		zap.String("instance_id", sourceInstance),
	)

	imageID, err := client.CreateImage(ctx, sourceInstance)
	if err != nil {
		return "", err
	}

	logger.Info("Waiting for image to become available",
		zap.String("operation", "image_poll"),
		zap.String("image_id", imageID),
		zap.Duration("poll_interval", pollInterval),
		zap.Int("max_attempts", maxAttempts),
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		state, err := client.ImageState(ctx, imageID)
		if err != nil {
			return "", err
		}

		if state == types.ImageStateAvailable {
			logger.Info("Image is available",
				zap.String("operation", "image_poll"),
				zap.String("image_id", imageID),
				zap.Int("attempts", attempt),
			)
			return imageID, nil
		}

		if terminalFailureStates[state] {
			return "", errors.New(errors.ErrImageFailed, "image reached a terminal failure state",
				map[string]interface{}{
					"image_id": imageID,
					"state":    string(state),
				}, nil)
		}

		logger.Info("Still waiting for image to become available",
			zap.String("operation", "image_poll"),
			zap.String("image_id", imageID),
			zap.String("state", string(state)),
			zap.Int("attempt", attempt),
		)

		select {
		case <-ctx.Done():
			return "", errors.New(errors.ErrImagePoll, "image polling cancelled",
				map[string]interface{}{
					"image_id": imageID,
				}, ctx.Err())
		case <-time.After(pollInterval):
		}
	}

	return "", errors.New(errors.ErrImageTimeout, "image did not become available in time",
		map[string]interface{}{
			"image_id":     imageID,
			"max_attempts": maxAttempts,
		}, nil)
}
