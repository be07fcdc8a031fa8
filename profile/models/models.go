package models

// Profile is the root of a clone-profile HCL file
type Profile struct {
	Overrides *OverridesBlock `hcl:"overrides,block"`
}

// OverridesBlock declares default launch parameter overrides. Every attribute
// is optional; CLI key=value pairs take precedence over profile values.
type OverridesBlock struct {
	ImageID      string `hcl:"image_id,optional"`
	InstanceType string `hcl:"instance_type,optional"`
	KeyName      string `hcl:"key_name,optional"`
	SubnetID     string `hcl:"subnet_id,optional"`
}
