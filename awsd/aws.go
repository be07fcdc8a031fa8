package awsd

import (
	"context"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"ec2cloner/awsd/models"
	"ec2cloner/configuration"
	"ec2cloner/errors"
)

const (
	packageName = "awsd"

	imageNameSuffixLen = 10
	letters            = "abcdefghijklmnopqrstuvwxyz"
)

// EC2API defines the subset of the EC2 API consumed by the cloner
type EC2API interface {
	CreateImage(ctx context.Context, params *ec2.CreateImageInput, optFns ...func(*ec2.Options)) (*ec2.CreateImageOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
}

type AwsClient struct {
	client EC2API
}

func NewEC2ClientWithConfig(cfg aws.Config) *AwsClient {
	return &AwsClient{
		client: ec2.NewFromConfig(cfg),
	}
}

// NewEC2Client creates and returns a configured EC2 client for the target
// region. When LocalstackURL is set the client is pointed at LocalStack for
// local development.
func NewEC2Client(appCfg *configuration.Config) (*AwsClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(appCfg.Region),
	}

	if appCfg.AcessKeyID != "" && appCfg.AccessSecret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(appCfg.AcessKeyID, appCfg.AccessSecret, "")))
	}

	if appCfg.LocalstackURL != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: appCfg.LocalstackURL, SigningRegion: region}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, errors.New(errors.ErrAWSClient, "failed to load AWS configuration",
			map[string]interface{}{
				"region": appCfg.Region,
			}, err)
	}

	return NewEC2ClientWithConfig(cfg), nil
}

// CreateImage triggers a reboot-based AMI capture of the source instance and
// returns the new image id. The image name is the instance id plus a random
// suffix, since image names must be unique per account and region.
func (awS *AwsClient) CreateImage(ctx context.Context, instanceID string) (string, error) {
	logger := zap.L().With(zap.String("package", packageName))

	output, err := awS.client.CreateImage(ctx, &ec2.CreateImageInput{
		InstanceId: aws.String(instanceID),
		Name:       aws.String(instanceID + "-" + randomSuffix(imageNameSuffixLen)),
	})
	if err != nil {
		return "", errors.New(errors.ErrImageCreate, "failed to create image from instance",
			map[string]interface{}{
				"instance_id": instanceID,
			}, err)
	}

	imageID := aws.ToString(output.ImageId)
	logger.Info("Image creation started",
		zap.String("operation", "create_image"),
		zap.String("instance_id", instanceID),
		zap.String("image_id", imageID),
	)

	return imageID, nil
}

// ImageState fetches the current lifecycle state of an image
func (awS *AwsClient) ImageState(ctx context.Context, imageID string) (types.ImageState, error) {
	output, err := awS.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: []string{imageID},
	})
	if err != nil {
		return "", errors.New(errors.ErrImagePoll, "failed to describe image",
			map[string]interface{}{
				"image_id": imageID,
			}, err)
	}

	if len(output.Images) == 0 {
		return "", errors.New(errors.ErrImagePoll, "image not found",
			map[string]interface{}{
				"image_id": imageID,
			}, nil)
	}

	return output.Images[0].State, nil
}

// GetInstanceDescriptor fetches the source instance and maps it into the
// read-oriented descriptor model. The instance id must resolve to exactly one
// instance.
func (awS *AwsClient) GetInstanceDescriptor(ctx context.Context, instanceID string) (*models.InstanceDescriptor, error) {
	logger := zap.L().With(zap.String("package", packageName))

	output, err := awS.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, errors.New(errors.ErrInstanceLookup, "failed to describe instance",
			map[string]interface{}{
				"instance_id": instanceID,
			}, err)
	}

	instances := flattenReservations(output.Reservations)
	if len(instances) != 1 {
		return nil, errors.New(errors.ErrInstanceLookup, "instance id did not resolve to exactly one instance",
			map[string]interface{}{
				"instance_id": instanceID,
				"found":       len(instances),
			}, nil)
	}

	i := instances[0]
	descriptor := &models.InstanceDescriptor{
		ImageID:        i.ImageId,
		KeyName:        i.KeyName,
		SubnetID:       i.SubnetId,
		VpcID:          i.VpcId,
		EbsOptimized:   i.EbsOptimized,
		SecurityGroups: parseSecurityGroups(i.SecurityGroups),
		Tags:           parseTags(i.Tags),
	}

	// InstanceType is an enum on the read side, not a pointer
	if i.InstanceType != "" {
		instanceType := string(i.InstanceType)
		descriptor.InstanceType = &instanceType
	}

	if i.IamInstanceProfile != nil {
		descriptor.IamInstanceProfile = &models.IamInstanceProfile{
			Arn: aws.ToString(i.IamInstanceProfile.Arn),
			ID:  aws.ToString(i.IamInstanceProfile.Id),
		}
	}

	logger.Info("Source instance configuration fetched",
		zap.String("operation", "describe_instance"),
		zap.String("instance_id", instanceID),
	)

	return descriptor, nil
}

// RunInstance launches exactly one instance from the merged launch spec and
// returns the new instance id. The IAM ARN is re-wrapped into the profile
// record shape the write API expects and dropped entirely when empty; tags are
// wrapped into an instance-scoped tag specification.
func (awS *AwsClient) RunInstance(ctx context.Context, spec *models.LaunchSpec) (string, error) {
	logger := zap.L().With(zap.String("package", packageName))

	input := &ec2.RunInstancesInput{
		ImageId:          aws.String(spec.ImageID),
		InstanceType:     types.InstanceType(spec.InstanceType),
		KeyName:          aws.String(spec.KeyName),
		SubnetId:         aws.String(spec.SubnetID),
		SecurityGroupIds: spec.SecurityGroupIDs,
		EbsOptimized:     aws.Bool(spec.EbsOptimized),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
	}

	if spec.IamInstanceProfileArn != "" {
		input.IamInstanceProfile = &types.IamInstanceProfileSpecification{
			Arn: aws.String(spec.IamInstanceProfileArn),
		}
	}

	if len(spec.Tags) > 0 {
		tags := make([]types.Tag, 0, len(spec.Tags))
		for _, tag := range spec.Tags {
			tags = append(tags, types.Tag{Key: aws.String(tag.Key), Value: aws.String(tag.Value)})
		}
		input.TagSpecifications = []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags:         tags,
			},
		}
	}

	output, err := awS.client.RunInstances(ctx, input)
	if err != nil {
		return "", errors.New(errors.ErrLaunch, "failed to launch instance",
			map[string]interface{}{
				"image_id":  spec.ImageID,
				"subnet_id": spec.SubnetID,
			}, err)
	}

	if len(output.Instances) == 0 {
		return "", errors.New(errors.ErrLaunch, "launch returned no instances",
			map[string]interface{}{
				"image_id": spec.ImageID,
			}, nil)
	}

	instanceID := aws.ToString(output.Instances[0].InstanceId)
	logger.Info("Instance launched",
		zap.String("operation", "run_instance"),
		zap.String("instance_id", instanceID),
	)

	return instanceID, nil
}

// flattenReservations collects instances across all reservations in the response
func flattenReservations(reservations []types.Reservation) []types.Instance {
	result := make([]types.Instance, 0)
	for _, reservation := range reservations {
		result = append(result, reservation.Instances...)
	}
	return result
}

// Helper function to parse security groups
func parseSecurityGroups(groups []types.GroupIdentifier) []models.SecurityGroup {
	result := make([]models.SecurityGroup, 0)
	for _, group := range groups {
		result = append(result, models.SecurityGroup{
			GroupID:   aws.ToString(group.GroupId),
			GroupName: aws.ToString(group.GroupName),
		})
	}
	return result
}

// Helper function to parse tags preserving source order
func parseTags(tags []types.Tag) []models.Tag {
	result := make([]models.Tag, 0)
	for _, tag := range tags {
		if tag.Key != nil {
			result = append(result, models.Tag{Key: *tag.Key, Value: aws.ToString(tag.Value)})
		}
	}
	return result
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
