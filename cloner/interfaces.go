package cloner

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awsm "ec2cloner/awsd/models"
)

// AWSClient defines the interface for AWS operations
type AWSClient interface {
	CreateImage(ctx context.Context, instanceID string) (string, error)
	ImageState(ctx context.Context, imageID string) (types.ImageState, error)
	GetInstanceDescriptor(ctx context.Context, instanceID string) (*awsm.InstanceDescriptor, error)
	RunInstance(ctx context.Context, spec *awsm.LaunchSpec) (string, error)
}

// Cloner defines the interface for the clone pipeline
type Cloner interface {
	Run(ctx context.Context) (string, error)
}
