package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterLister is the subset of the SSM client used to read parameters.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters reads every parameter under SSM_PARAMETER_PATH and merges
// them into config, keyed by the last path segment. Nothing happens when the
// path is not configured.
func LoadSSMParameters(ctx context.Context, config map[string]string) error {
	prefix := GetString(config, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(config, "AWS_REGION", "us-east-1")))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	values, err := FetchParameters(ctx, ssm.NewFromConfig(awsCfg), prefix)
	if err != nil {
		return err
	}

	Merge(config, values)
	return nil
}

// FetchParameters pages through all decrypted parameters under prefix.
func FetchParameters(ctx context.Context, client ParameterLister, prefix string) (map[string]string, error) {
	values := make(map[string]string)

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("get parameters by path %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			name := strings.TrimSpace(path.Base(aws.ToString(p.Name)))
			if name == "" || name == "." || name == "/" {
				continue
			}
			values[name] = aws.ToString(p.Value)
		}
	}

	return values, nil
}
