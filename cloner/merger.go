package cloner

import (
	"go.uber.org/zap"

	awsm "ec2cloner/awsd/models"
)

// Merge layers the resolved image id and then the caller-supplied overrides
// onto the sanitized spec. Overrides always win, including an override image
// id beating the one the provisioner resolved. The input spec is not mutated.
func Merge(spec *awsm.LaunchSpec, imageID string, overrides *awsm.Overrides) *awsm.LaunchSpec {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Merge"),
	)

	merged := *spec
	merged.ImageID = imageID

	if overrides != nil {
		if overrides.ImageID != "" {
			merged.ImageID = overrides.ImageID
		}
		if overrides.InstanceType != "" {
			merged.InstanceType = overrides.InstanceType
		}
		if overrides.KeyName != "" {
			merged.KeyName = overrides.KeyName
		}
		if overrides.SubnetID != "" {
			merged.SubnetID = overrides.SubnetID
		}
	}

	logger.Info("Launch configuration merged",
		zap.String("operation", "merge"),
		zap.String("image_id", merged.ImageID),
		zap.String("instance_type", merged.InstanceType),
		zap.String("subnet_id", merged.SubnetID),
	)

	return &merged
}
