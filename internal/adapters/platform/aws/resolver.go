package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	awserrors "github.com/olusolaa/miq-converge/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type ConfigLoader func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error)

// CredentialResolver resolves amazon provider credentials through the AWS
// SDK before they are sent to ManageIQ. Empty keys fall back to the
// default chain (env, shared config, instance role).
type CredentialResolver struct {
	profile    string
	loadConfig ConfigLoader
	newSTS     func(aws.Config) STSClientInterface
	newEC2     func(aws.Config) EC2ClientInterface
	logger     ports.Logger
}

var _ ports.CloudCredentialResolver = (*CredentialResolver)(nil)

type ResolverOption func(*CredentialResolver)

func WithProfile(profile string) ResolverOption {
	return func(r *CredentialResolver) { r.profile = profile }
}

func WithConfigLoader(load ConfigLoader) ResolverOption {
	return func(r *CredentialResolver) { r.loadConfig = load }
}

func WithClients(newSTS func(aws.Config) STSClientInterface, newEC2 func(aws.Config) EC2ClientInterface) ResolverOption {
	return func(r *CredentialResolver) {
		r.newSTS = newSTS
		r.newEC2 = newEC2
	}
}

func NewCredentialResolver(logger ports.Logger, opts ...ResolverOption) (*CredentialResolver, error) {
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil for AWS credential resolver")
	}
	r := &CredentialResolver{
		loadConfig: config.LoadDefaultConfig,
		newSTS:     func(cfg aws.Config) STSClientInterface { return sts.NewFromConfig(cfg) },
		newEC2:     func(cfg aws.Config) EC2ClientInterface { return ec2.NewFromConfig(cfg) },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *CredentialResolver) Resolve(ctx context.Context, accessKeyID, secretAccessKey, region string) (ports.CloudCredentials, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	if accessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	} else if r.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(r.profile))
	}

	cfg, err := r.loadConfig(ctx, loadOpts...)
	if err != nil {
		return ports.CloudCredentials{}, errors.WrapUserFacing(err, errors.CodeCloudCredentials,
			"failed to load AWS configuration", "Check the AWS profile and environment.")
	}
	if cfg.Credentials == nil {
		return ports.CloudCredentials{}, errors.NewUserFacing(errors.CodeCloudCredentials,
			"no AWS credentials available", "Set access_key_id and secret_access_key on the provider.")
	}
	resolved, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return ports.CloudCredentials{}, awserrors.HandleAWSError(ctx, "credentials", "Retrieve", err)
	}

	identity, err := r.newSTS(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return ports.CloudCredentials{}, awserrors.HandleAWSError(ctx, "sts", "GetCallerIdentity", err)
	}

	if region != "" {
		if err := r.checkRegion(ctx, cfg, region); err != nil {
			return ports.CloudCredentials{}, err
		}
	}

	out := ports.CloudCredentials{
		AccessKeyID:     resolved.AccessKeyID,
		SecretAccessKey: resolved.SecretAccessKey,
		Region:          region,
		Account:         aws.ToString(identity.Account),
		ARN:             aws.ToString(identity.Arn),
	}
	r.logger.Debugf(ctx, "Resolved AWS credentials from %s for account %s", resolved.Source, out.Account)
	return out, nil
}

func (r *CredentialResolver) checkRegion(ctx context.Context, cfg aws.Config, region string) error {
	resp, err := r.newEC2(cfg).DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions:  aws.Bool(true),
		RegionNames: []string{region},
	})
	if err != nil {
		return awserrors.HandleAWSError(ctx, "ec2", "DescribeRegions", err)
	}
	for _, reg := range resp.Regions {
		if aws.ToString(reg.RegionName) == region {
			return nil
		}
	}
	return errors.NewUserFacing(errors.CodeCloudCredentials,
		fmt.Sprintf("unknown AWS region %q", region), "Use a region name such as us-east-1.")
}
