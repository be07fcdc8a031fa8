package cloner

import (
	"strings"

	"go.uber.org/zap"

	awsm "ec2cloner/awsd/models"
	"ec2cloner/errors"
)

const (
	// Tag keys under the provider-reserved prefix are provider bookkeeping and
	// cannot be resubmitted on a new resource.
	reservedTagPrefix = "aws:"

	cloneMethodTagKey = "CloneMethod"
	cloneSourceTagKey = "CloneSource"

	// Kept byte-compatible with the tag value written by the original tooling,
	// so tag-based audits keep matching clones from before the rewrite.
	cloneMethodTagValue = "cloneEC2.py"
)

// Sanitize projects the raw instance descriptor into a launch spec:
// security group records are flattened to their ids, the IAM profile record is
// replaced by its bare ARN (empty string when the instance has none), tags are
// rebuilt with the two provenance tags first and reserved-prefixed source tags
// dropped, and only the fixed launch parameter set is carried over. A launch
// parameter missing from the descriptor outright is a hard error; launching
// with a silently defaulted value would produce a misconfigured clone.
func Sanitize(descriptor *awsm.InstanceDescriptor, sourceInstance string) (*awsm.LaunchSpec, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Sanitize"),
	)

	if err := checkRequiredFields(descriptor); err != nil {
		return nil, err
	}

	spec := &awsm.LaunchSpec{
		ImageID:          *descriptor.ImageID,
		InstanceType:     *descriptor.InstanceType,
		KeyName:          *descriptor.KeyName,
		SubnetID:         *descriptor.SubnetID,
		VpcID:            *descriptor.VpcID,
		EbsOptimized:     *descriptor.EbsOptimized,
		SecurityGroupIDs: flattenSecurityGroups(descriptor.SecurityGroups),
		Tags:             buildTags(descriptor.Tags, sourceInstance),
	}

	// Absent IAM profile normalizes to the empty string, never a missing field
	if descriptor.IamInstanceProfile != nil {
		spec.IamInstanceProfileArn = descriptor.IamInstanceProfile.Arn
	}

	logger.Info("Source configuration sanitized",
		zap.String("operation", "sanitize"),
		zap.String("source_instance", sourceInstance),
		zap.Strings("security_group_ids", spec.SecurityGroupIDs),
		zap.Int("tag_count", len(spec.Tags)),
	)

	return spec, nil
}

// checkRequiredFields rejects descriptors missing a launch parameter outright.
// The IAM profile is exempt: its absence is a valid state, normalized later.
func checkRequiredFields(descriptor *awsm.InstanceDescriptor) error {
	missing := ""
	switch {
	case descriptor.ImageID == nil:
		missing = "ImageId"
	case descriptor.InstanceType == nil:
		missing = "InstanceType"
	case descriptor.KeyName == nil:
		missing = "KeyName"
	case descriptor.SubnetID == nil:
		missing = "SubnetId"
	case descriptor.VpcID == nil:
		missing = "VpcId"
	case descriptor.EbsOptimized == nil:
		missing = "EbsOptimized"
	}

	if missing != "" {
		return errors.New(errors.ErrSanitize, "source descriptor is missing a required field",
			map[string]interface{}{
				"field": missing,
			}, nil)
	}
	return nil
}

// flattenSecurityGroups reduces group records to their ids, preserving order
func flattenSecurityGroups(groups []awsm.SecurityGroup) []string {
	result := make([]string, 0, len(groups))
	for _, group := range groups {
		result = append(result, group.GroupID)
	}
	return result
}

// buildTags assembles the tag list for the new instance: the two provenance
// tags first, then every source tag that is neither reserved-prefixed nor a
// duplicate of a provenance key, in original order.
func buildTags(sourceTags []awsm.Tag, sourceInstance string) []awsm.Tag {
	tags := []awsm.Tag{
		{Key: cloneMethodTagKey, Value: cloneMethodTagValue},
		{Key: cloneSourceTagKey, Value: sourceInstance},
	}

	for _, tag := range sourceTags {
		if strings.HasPrefix(tag.Key, reservedTagPrefix) {
			continue
		}
		if tag.Key == cloneMethodTagKey || tag.Key == cloneSourceTagKey {
			continue
		}
		tags = append(tags, tag)
	}

	return tags
}
