package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moonstream-to/collectables/ledger"
)

func CreateRootCommand() *cobra.Command {
	// rootCmd represents the base command when called without any subcommands
	rootCmd := &cobra.Command{
		Use:   "collectables",
		Short: "Collectables: NFT collections with signed ownership claims",
		Long: `Collectables: NFT collections with signed ownership claims

The collectables CLI serves an HTTP API over a factory of NFT collections, and
computes and signs the claim messages that let a recipient take ownership of a
token from its current holder.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	versionCmd := CreateVersionCommand()
	serveCmd := CreateServeCommand()
	addressCmd := CreateAddressCommand()
	messageHashCmd := CreateMessageHashCommand()
	signClaimCmd := CreateSignClaimCommand()
	rootCmd.AddCommand(versionCmd, serveCmd, addressCmd, messageHashCmd, signClaimCmd)

	completionCmd := CreateCompletionCommand(rootCmd)
	rootCmd.AddCommand(completionCmd)

	return rootCmd
}

func CreateCompletionCommand(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts for collectables",
		Long: `Generate shell completion scripts for collectables.

The command for each shell will print a completion script to stdout. You can source this script to get
completions in your current shell session. You can add this script to the completion directory for your
shell to get completions for all future sessions.`,
	}

	bashCompletionCmd := &cobra.Command{
		Use:   "bash",
		Short: "bash completions for collectables",
		Run: func(cmd *cobra.Command, args []string) {
			rootCmd.GenBashCompletion(cmd.OutOrStdout())
		},
	}

	zshCompletionCmd := &cobra.Command{
		Use:   "zsh",
		Short: "zsh completions for collectables",
		Run: func(cmd *cobra.Command, args []string) {
			rootCmd.GenZshCompletion(cmd.OutOrStdout())
		},
	}

	completionCmd.AddCommand(bashCompletionCmd, zshCompletionCmd)

	return completionCmd
}

func CreateVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of collectables that you are currently using",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(CollectablesVersion())
		},
	}

	return versionCmd
}

func CreateServeCommand() *cobra.Command {
	var host string
	var port int
	var envFile string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the collectables API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				config.Host = host
			}
			if cmd.Flags().Changed("port") {
				config.Port = port
			}

			logger := logrus.New()
			logger.SetFormatter(&logrus.JSONFormatter{})
			logger.SetLevel(config.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return RunServer(ctx, config, logger)
		},
	}

	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Server listening address")
	serveCmd.Flags().IntVar(&port, "port", 7191, "Server listening port")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "File with COLLECTABLES_* variables, ignored if missing")

	return serveCmd
}

func CreateAddressCommand() *cobra.Command {
	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of the operator signing key",
		Long:  "Print the address of the signing key configured by COLLECTABLES_PRIVATE_KEY, COLLECTABLES_PRIVATE_KEY_SECRET_ID or COLLECTABLES_KEYSTORE",
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, err := SigningKeyFromEnv(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println(crypto.PubkeyToAddress(privateKey.PublicKey).Hex())
			return nil
		},
	}

	return addressCmd
}

// claimFlags holds the message fields shared by message-hash and sign-claim.
type claimFlags struct {
	recipient string
	tokenID   string
	amount    string
}

func (flags *claimFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.recipient, "recipient", "", "Address allowed to claim the token")
	cmd.Flags().StringVar(&flags.tokenID, "token-id", "", "ID of the token being claimed")
	cmd.Flags().StringVar(&flags.amount, "amount", "0", "Amount bound into the claim message")
	cmd.MarkFlagRequired("recipient")
	cmd.MarkFlagRequired("token-id")
}

func (flags *claimFlags) parse() (*CreateMessageHashRequest, *ClaimParameters, error) {
	if !common.IsHexAddress(flags.recipient) {
		return nil, nil, errors.New("--recipient must be an Ethereum address")
	}

	request := &CreateMessageHashRequest{
		Recipient: flags.recipient,
		TokenID:   flags.tokenID,
		Amount:    flags.amount,
	}
	var params ClaimParameters
	if err := params.ParseCreateMessageHashRequest(request); err != nil {
		return nil, nil, err
	}
	return request, &params, nil
}

func CreateMessageHashCommand() *cobra.Command {
	var flags claimFlags

	messageHashCmd := &cobra.Command{
		Use:   "message-hash",
		Short: "Compute the hash a token owner signs to authorize a claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			request, params, err := flags.parse()
			if err != nil {
				return err
			}

			messageHash, err := ledger.GetMessageHash(params.Recipient, params.TokenID, params.Amount)
			if err != nil {
				return err
			}

			response := CreateMessageHashResponse{
				Request:     request,
				MessageHash: messageHash.Hex(),
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}

	flags.register(messageHashCmd)

	return messageHashCmd
}

func CreateSignClaimCommand() *cobra.Command {
	var flags claimFlags
	var keystoreFile string

	signClaimCmd := &cobra.Command{
		Use:   "sign-claim",
		Short: "Sign a claim message with the operator key",
		Long: `Sign a claim message with the operator key.

If --keystore is given the password is prompted for. Otherwise the key is loaded from
COLLECTABLES_PRIVATE_KEY, COLLECTABLES_PRIVATE_KEY_SECRET_ID or COLLECTABLES_KEYSTORE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			request, params, err := flags.parse()
			if err != nil {
				return err
			}

			privateKey, err := loadSigningKey(cmd.Context(), keystoreFile)
			if err != nil {
				return err
			}
			authorizer := NewKeyAuthorizer(privateKey)

			messageHash, err := authorizer.CreateMessageHash(params.Recipient, params.TokenID, params.Amount)
			if err != nil {
				return err
			}
			signature, err := authorizer.CreateSignature(params.Recipient, params.TokenID, params.Amount)
			if err != nil {
				return err
			}

			response := AuthorizationResponse{
				Request:     request,
				MessageHash: messageHash.Hex(),
				Signer:      authorizer.Address().Hex(),
				Signature:   hex.EncodeToString(signature),
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}

	flags.register(signClaimCmd)
	signClaimCmd.Flags().StringVar(&keystoreFile, "keystore", "", "Path to a keystore file holding the signing key")

	return signClaimCmd
}

func loadSigningKey(ctx context.Context, keystoreFile string) (*ecdsa.PrivateKey, error) {
	if keystoreFile != "" {
		return PrivateKeyFromKeystoreFile(keystoreFile, "", true)
	}
	return SigningKeyFromEnv(ctx)
}
