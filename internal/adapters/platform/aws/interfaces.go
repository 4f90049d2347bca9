package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

//go:generate mockery --name STSClientInterface --output ./mocks --outpkg mocks --case underscore
//go:generate mockery --name EC2ClientInterface --output ./mocks --outpkg mocks --case underscore

// STSClientInterface defines the method needed from the AWS SDK STS client.
type STSClientInterface interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type EC2ClientInterface interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}
