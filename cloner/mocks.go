package cloner

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/mock"

	awsm "ec2cloner/awsd/models"
)

// MockAWSClient is a mock implementation of AWSClient
type MockAWSClient struct {
	mock.Mock
}

// CreateImage mocks the CreateImage method
func (m *MockAWSClient) CreateImage(ctx context.Context, instanceID string) (string, error) {
	args := m.Called(ctx, instanceID)
	return args.String(0), args.Error(1)
}

// ImageState mocks the ImageState method
func (m *MockAWSClient) ImageState(ctx context.Context, imageID string) (types.ImageState, error) {
	args := m.Called(ctx, imageID)
	return args.Get(0).(types.ImageState), args.Error(1)
}

// GetInstanceDescriptor mocks the GetInstanceDescriptor method
func (m *MockAWSClient) GetInstanceDescriptor(ctx context.Context, instanceID string) (*awsm.InstanceDescriptor, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsm.InstanceDescriptor), args.Error(1)
}

// RunInstance mocks the RunInstance method
func (m *MockAWSClient) RunInstance(ctx context.Context, spec *awsm.LaunchSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}
