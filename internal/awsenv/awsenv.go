// Where: internal/awsenv/awsenv.go
// What: Resolves the target region and credentials profile.
// Why: Region and profile are the only externally supplied parameters.
package awsenv

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
)

// ErrNoRegion means neither the project file nor the AWS shared-config
// chain produced a region.
var ErrNoRegion = errors.New("no region configured")

// Env is the resolved provisioning environment.
type Env struct {
	Region  string
	Profile string
}

// Resolve determines the effective region. An explicit region wins; otherwise
// the AWS shared-config chain (env, profile, shared config files) is
// consulted through the SDK, honoring the given profile.
func Resolve(ctx context.Context, region, profile string) (Env, error) {
	if region != "" {
		return Env{Region: region, Profile: profile}, nil
	}

	opts := []func(*config.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return Env{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		return Env{}, ErrNoRegion
	}
	return Env{Region: cfg.Region, Profile: profile}, nil
}
