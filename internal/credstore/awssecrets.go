package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// AWSSecretsMedium keeps the password keyspace in AWS Secrets Manager,
// one secret per key, under a shared name prefix. The registry never
// goes through this medium; only secret material does.
type AWSSecretsMedium struct {
	client *secretsmanager.Client
	prefix string
}

// NewAWSSecretsMedium builds a Secrets Manager-backed medium using the
// default AWS credential chain. Region overrides the chain's region when
// non-empty.
func NewAWSSecretsMedium(ctx context.Context, region, prefix string) (*AWSSecretsMedium, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &AWSSecretsMedium{
		client: secretsmanager.NewFromConfig(cfg),
		prefix: prefix,
	}, nil
}

func (m *AWSSecretsMedium) secretID(key string) string {
	if m.prefix == "" {
		return key
	}
	return m.prefix + "/" + key
}

func (m *AWSSecretsMedium) Read(ctx context.Context, key string) ([]byte, error) {
	id := m.secretID(key)
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("fetch secret '%s': %w", id, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret '%s' has no string value", id)
	}
	return []byte(*out.SecretString), nil
}

func (m *AWSSecretsMedium) Write(ctx context.Context, key string, value []byte) error {
	id := m.secretID(key)
	_, err := m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(string(value)),
	})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("update secret '%s': %w", id, err)
	}
	_, err = m.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(id),
		SecretString: aws.String(string(value)),
	})
	if err != nil {
		return fmt.Errorf("create secret '%s': %w", id, err)
	}
	return nil
}

func (m *AWSSecretsMedium) Delete(ctx context.Context, key string) error {
	id := m.secretID(key)
	_, err := m.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(id),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("delete secret '%s': %w", id, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var rnf *smtypes.ResourceNotFoundException
	return errors.As(err, &rnf)
}
