package models

// InstanceDescriptor is the read-oriented view of the source EC2 instance as
// returned by DescribeInstances. Required launch parameters stay pointers so
// that an attribute missing from the API response is distinguishable from an
// empty value; the sanitizer turns a nil required field into a hard error.
type InstanceDescriptor struct {
	ImageID            *string
	InstanceType       *string
	KeyName            *string
	SubnetID           *string
	VpcID              *string
	EbsOptimized       *bool
	SecurityGroups     []SecurityGroup
	IamInstanceProfile *IamInstanceProfile
	Tags               []Tag
}

// SecurityGroup is a security group record attached to the source instance
type SecurityGroup struct {
	GroupID   string
	GroupName string
}

// IamInstanceProfile is the IAM profile record attached to the source instance
type IamInstanceProfile struct {
	Arn string
	ID  string
}

// Tag is a single key/value instance tag
type Tag struct {
	Key   string
	Value string
}

// LaunchSpec is the write-oriented configuration submitted to RunInstances.
// Security groups are flattened to plain group ids and the IAM profile to a
// bare ARN string; an empty ARN means "no profile".
type LaunchSpec struct {
	ImageID               string
	InstanceType          string
	KeyName               string
	SubnetID              string
	VpcID                 string
	SecurityGroupIDs      []string
	IamInstanceProfileArn string
	EbsOptimized          bool
	Tags                  []Tag
}

// Overrides holds the caller-supplied launch parameter overrides. An empty
// string means the parameter was not supplied.
type Overrides struct {
	ImageID      string
	InstanceType string
	KeyName      string
	SubnetID     string
}

// Empty reports whether no override was supplied
func (o *Overrides) Empty() bool {
	if o == nil {
		return true
	}
	return o.ImageID == "" && o.InstanceType == "" && o.KeyName == "" && o.SubnetID == ""
}
