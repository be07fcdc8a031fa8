package cloner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	awsm "ec2cloner/awsd/models"
)

func TestMerge(t *testing.T) {
	baseSpec := func() *awsm.LaunchSpec {
		return &awsm.LaunchSpec{
			ImageID:          "ami-derived",
			InstanceType:     "t3.medium",
			KeyName:          "ops-key",
			SubnetID:         "subnet-abc",
			VpcID:            "vpc-abc",
			SecurityGroupIDs: []string{"sg-1"},
			EbsOptimized:     true,
			Tags:             []awsm.Tag{{Key: "CloneMethod", Value: "cloneEC2.py"}},
		}
	}

	tests := []struct {
		name      string
		imageID   string
		overrides *awsm.Overrides
		assertion func(*testing.T, *awsm.LaunchSpec)
	}{
		{
			name:      "resolved image id replaces derived one",
			imageID:   "ami-resolved",
			overrides: nil,
			assertion: func(t *testing.T, merged *awsm.LaunchSpec) {
				assert.Equal(t, "ami-resolved", merged.ImageID)
				assert.Equal(t, "t3.medium", merged.InstanceType)
			},
		},
		{
			name:      "overrides win over sanitized values",
			imageID:   "ami-resolved",
			overrides: &awsm.Overrides{InstanceType: "t3.small", SubnetID: "subnet-Y"},
			assertion: func(t *testing.T, merged *awsm.LaunchSpec) {
				assert.Equal(t, "ami-resolved", merged.ImageID)
				assert.Equal(t, "t3.small", merged.InstanceType)
				assert.Equal(t, "subnet-Y", merged.SubnetID)
				assert.Equal(t, "ops-key", merged.KeyName)
			},
		},
		{
			name:      "override image id wins over resolved image id",
			imageID:   "ami-resolved",
			overrides: &awsm.Overrides{ImageID: "ami-X"},
			assertion: func(t *testing.T, merged *awsm.LaunchSpec) {
				assert.Equal(t, "ami-X", merged.ImageID)
			},
		},
		{
			name:      "untouched fields carry through",
			imageID:   "ami-resolved",
			overrides: &awsm.Overrides{KeyName: "other-key"},
			assertion: func(t *testing.T, merged *awsm.LaunchSpec) {
				assert.Equal(t, "vpc-abc", merged.VpcID)
				assert.Equal(t, []string{"sg-1"}, merged.SecurityGroupIDs)
				assert.True(t, merged.EbsOptimized)
				assert.Equal(t, []awsm.Tag{{Key: "CloneMethod", Value: "cloneEC2.py"}}, merged.Tags)
				assert.Equal(t, "other-key", merged.KeyName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := baseSpec()
			merged := Merge(spec, tt.imageID, tt.overrides)
			tt.assertion(t, merged)

			// Input spec is never mutated
			assert.Equal(t, "ami-derived", spec.ImageID)
		})
	}
}
