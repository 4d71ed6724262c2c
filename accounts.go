package main

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

// SecretsClient is the part of the AWS Secrets Manager client used to load
// signing keys.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SigningKeyFromEnv loads the operator's signing key from the environment variables following this strategy:
//   - If COLLECTABLES_PRIVATE_KEY is set, it takes priority. It is expected to be a hex encoded private key.
//   - If COLLECTABLES_PRIVATE_KEY_SECRET_ID is set, the hex encoded private key is read from that AWS Secrets
//     Manager secret, using the default AWS configuration chain for credentials and region.
//   - If COLLECTABLES_KEYSTORE is set, then it is expected to be a path to a keystore file. If
//     COLLECTABLES_KEYSTORE_PASSWORD is also set, that is used as the password to decrypt the keystore.
//     Otherwise, the user is prompted for this password.
func SigningKeyFromEnv(ctx context.Context) (*ecdsa.PrivateKey, error) {
	privateKeyHex := os.Getenv("COLLECTABLES_PRIVATE_KEY")
	if privateKeyHex != "" {
		return PrivateKey(privateKeyHex)
	}

	secretID := os.Getenv("COLLECTABLES_PRIVATE_KEY_SECRET_ID")
	if secretID != "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading AWS configuration: %w", err)
		}
		return PrivateKeyFromSecret(ctx, secretsmanager.NewFromConfig(cfg), secretID)
	}

	keystoreFile := os.Getenv("COLLECTABLES_KEYSTORE")
	if keystoreFile == "" {
		return nil, errors.New("one of COLLECTABLES_PRIVATE_KEY, COLLECTABLES_PRIVATE_KEY_SECRET_ID or COLLECTABLES_KEYSTORE must be set")
	}

	keystorePassword, ok := os.LookupEnv("COLLECTABLES_KEYSTORE_PASSWORD")
	return PrivateKeyFromKeystoreFile(keystoreFile, keystorePassword, !ok)
}

// PrivateKey decodes a private key from its hex representation, with or without a 0x prefix.
func PrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
}

// PrivateKeyFromSecret reads a hex encoded private key from an AWS Secrets Manager secret.
func PrivateKeyFromSecret(ctx context.Context, client SecretsClient, secretID string) (*ecdsa.PrivateKey, error) {
	output, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretID)})
	if err != nil {
		return nil, fmt.Errorf("error reading secret %s: %w", secretID, err)
	}
	if output.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}
	return PrivateKey(*output.SecretString)
}

// PrivateKeyFromKeystoreFile loads a private key from a keystore file. If prompt is true, the user will be
// interactively prompted for the password to the keystore file even if the password variable is nonempty.
func PrivateKeyFromKeystoreFile(keystoreFile, password string, prompt bool) (*ecdsa.PrivateKey, error) {
	keystoreContent, readErr := os.ReadFile(keystoreFile)
	if readErr != nil {
		return nil, readErr
	}

	if prompt {
		fmt.Printf("Please provide a password for keystore (%s): ", keystoreFile)
		passwordRaw, inputErr := term.ReadPassword(int(os.Stdin.Fd()))
		if inputErr != nil {
			return nil, fmt.Errorf("error reading password: %s", inputErr.Error())
		}
		fmt.Print("\n")
		password = string(passwordRaw)
	}

	key, err := keystore.DecryptKey(keystoreContent, password)
	if err != nil {
		return nil, err
	}
	return key.PrivateKey, nil
}
