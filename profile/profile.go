package profile

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/zap"

	awsm "ec2cloner/awsd/models"
	"ec2cloner/errors"
	"ec2cloner/profile/models"
)

const (
	packageName = "profile"
)

// Load parses a clone-profile HCL file into launch parameter overrides.
// A profile with no overrides block yields empty overrides.
func Load(path string) (*awsm.Overrides, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Load"),
	)

	var prof models.Profile
	if err := hclsimple.DecodeFile(path, nil, &prof); err != nil {
		return nil, errors.New(errors.ErrProfileParse, "failed to parse clone profile",
			map[string]interface{}{
				"path": path,
			}, err)
	}

	overrides := &awsm.Overrides{}
	if prof.Overrides != nil {
		overrides.ImageID = prof.Overrides.ImageID
		overrides.InstanceType = prof.Overrides.InstanceType
		overrides.KeyName = prof.Overrides.KeyName
		overrides.SubnetID = prof.Overrides.SubnetID
	}

	logger.Info("Clone profile loaded",
		zap.String("operation", "profile_load"),
		zap.String("path", path),
	)

	return overrides, nil
}

// Apply fills override fields the command line left unset with profile
// defaults. CLI values always win over profile values.
func Apply(cli, defaults *awsm.Overrides) *awsm.Overrides {
	if cli == nil {
		cli = &awsm.Overrides{}
	}
	if defaults == nil {
		return cli
	}

	if cli.ImageID == "" {
		cli.ImageID = defaults.ImageID
	}
	if cli.InstanceType == "" {
		cli.InstanceType = defaults.InstanceType
	}
	if cli.KeyName == "" {
		cli.KeyName = defaults.KeyName
	}
	if cli.SubnetID == "" {
		cli.SubnetID = defaults.SubnetID
	}

	return cli
}
