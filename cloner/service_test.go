package cloner

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	awsm "ec2cloner/awsd/models"
	"ec2cloner/configuration"
	"ec2cloner/errors"
)

func testConfig(overrides *awsm.Overrides) *configuration.Config {
	return &configuration.Config{
		Region:          "r1",
		SourceInstance:  "i-srcA",
		Overrides:       overrides,
		PollInterval:    1,
		MaxPollAttempts: 10,
	}
}

func sourceDescriptor() *awsm.InstanceDescriptor {
	return &awsm.InstanceDescriptor{
		ImageID:      str("ami-original"),
		InstanceType: str("t3.medium"),
		KeyName:      str("ops-key"),
		SubnetID:     str("subnet-src"),
		VpcID:        str("vpc-src"),
		EbsOptimized: ptr(false),
		SecurityGroups: []awsm.SecurityGroup{
			{GroupID: "sg-1", GroupName: "web"},
		},
		Tags: []awsm.Tag{
			{Key: "Environment", Value: "prod"},
		},
	}
}

func TestCloneService_Run_NoOverride(t *testing.T) {
	awsMock := new(MockAWSClient)
	awsMock.On("CreateImage", mock.Anything, "i-srcA").Return("ami-ready", nil).Once()
	awsMock.On("ImageState", mock.Anything, "ami-ready").Return(types.ImageStatePending, nil).Once()
	awsMock.On("ImageState", mock.Anything, "ami-ready").Return(types.ImageStateAvailable, nil).Once()
	awsMock.On("GetInstanceDescriptor", mock.Anything, "i-srcA").Return(sourceDescriptor(), nil).Once()

	var launched *awsm.LaunchSpec
	awsMock.On("RunInstance", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		launched = args.Get(1).(*awsm.LaunchSpec)
	}).Return("i-new", nil).Once()

	service := NewCloneService(awsMock, testConfig(&awsm.Overrides{}), zap.NewNop())
	instanceID, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "i-new", instanceID)
	awsMock.AssertExpectations(t)

	require.NotNil(t, launched)
	assert.Equal(t, "ami-ready", launched.ImageID)
	assert.Equal(t, []awsm.Tag{
		{Key: "CloneMethod", Value: "cloneEC2.py"},
		{Key: "CloneSource", Value: "i-srcA"},
		{Key: "Environment", Value: "prod"},
	}, launched.Tags)
}

func TestCloneService_Run_ImageAndSubnetOverride(t *testing.T) {
	awsMock := new(MockAWSClient)
	awsMock.On("GetInstanceDescriptor", mock.Anything, "i-srcA").Return(sourceDescriptor(), nil).Once()

	var launched *awsm.LaunchSpec
	awsMock.On("RunInstance", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		launched = args.Get(1).(*awsm.LaunchSpec)
	}).Return("i-new", nil).Once()

	overrides := &awsm.Overrides{ImageID: "ami-X", SubnetID: "subnet-Y"}
	service := NewCloneService(awsMock, testConfig(overrides), zap.NewNop())
	instanceID, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "i-new", instanceID)

	// Image override bypasses provisioning entirely
	awsMock.AssertNotCalled(t, "CreateImage", mock.Anything, mock.Anything)
	awsMock.AssertNotCalled(t, "ImageState", mock.Anything, mock.Anything)

	require.NotNil(t, launched)
	assert.Equal(t, "ami-X", launched.ImageID)
	assert.Equal(t, "subnet-Y", launched.SubnetID)
	// Everything else derived from the source unchanged
	assert.Equal(t, "t3.medium", launched.InstanceType)
	assert.Equal(t, "ops-key", launched.KeyName)
	assert.Equal(t, []string{"sg-1"}, launched.SecurityGroupIDs)
}

func TestCloneService_Run_SanitizeFailureStopsPipeline(t *testing.T) {
	descriptor := sourceDescriptor()
	descriptor.SubnetID = nil

	awsMock := new(MockAWSClient)
	awsMock.On("GetInstanceDescriptor", mock.Anything, "i-srcA").Return(descriptor, nil).Once()

	overrides := &awsm.Overrides{ImageID: "ami-X"}
	service := NewCloneService(awsMock, testConfig(overrides), zap.NewNop())
	instanceID, err := service.Run(context.Background())

	assert.Empty(t, instanceID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSanitize))
	awsMock.AssertNotCalled(t, "RunInstance", mock.Anything, mock.Anything)
}

func TestCloneService_Run_DescribeFailurePropagates(t *testing.T) {
	lookupErr := errors.New(errors.ErrInstanceLookup, "not found", nil, nil)

	awsMock := new(MockAWSClient)
	awsMock.On("GetInstanceDescriptor", mock.Anything, "i-srcA").Return(nil, lookupErr).Once()

	overrides := &awsm.Overrides{ImageID: "ami-X"}
	service := NewCloneService(awsMock, testConfig(overrides), zap.NewNop())
	instanceID, err := service.Run(context.Background())

	assert.Empty(t, instanceID)
	assert.True(t, errors.Is(err, errors.ErrInstanceLookup))
	awsMock.AssertNotCalled(t, "RunInstance", mock.Anything, mock.Anything)
}

func TestCloneService_Run_LaunchFailurePropagates(t *testing.T) {
	launchErr := errors.New(errors.ErrLaunch, "capacity", nil, nil)

	awsMock := new(MockAWSClient)
	awsMock.On("GetInstanceDescriptor", mock.Anything, "i-srcA").Return(sourceDescriptor(), nil).Once()
	awsMock.On("RunInstance", mock.Anything, mock.Anything).Return("", launchErr).Once()

	overrides := &awsm.Overrides{ImageID: "ami-X"}
	service := NewCloneService(awsMock, testConfig(overrides), zap.NewNop())
	instanceID, err := service.Run(context.Background())

	assert.Empty(t, instanceID)
	assert.True(t, errors.Is(err, errors.ErrLaunch))
}
