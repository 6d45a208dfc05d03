package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontoforge/ontoforge/auth"
	"github.com/ontoforge/ontoforge/errors"
)

// SecretCmd groups operator helpers for working with encrypted webhook
// secrets. Both subcommands use the webhook encryption key from the
// resolved configuration; the key itself is never printed.
var SecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Encrypt and decrypt webhook secrets",
	Long: `Operator helpers for the webhook secret vault.

Secrets registered for a repository are stored encrypted with the
configured AES-256-GCM key. Use these commands to produce a ciphertext
for manual registration or to recover a plaintext secret during
incident debugging.

Pass "-" as the value to read it from stdin instead of the command line
(recommended, keeps the secret out of shell history).

Examples:
  ontoforge secret encrypt my-webhook-secret
  echo -n my-webhook-secret | ontoforge secret encrypt -
  ontoforge secret decrypt 3f9a...`,
}

var secretEncryptCmd = &cobra.Command{
	Use:   "encrypt <plaintext>",
	Short: "Encrypt a webhook secret with the configured key",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretEncrypt,
}

var secretDecryptCmd = &cobra.Command{
	Use:   "decrypt <ciphertext>",
	Short: "Decrypt a stored webhook secret with the configured key",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretDecrypt,
}

var secretConfigPath string

func init() {
	SecretCmd.PersistentFlags().StringVar(&secretConfigPath, "config", "", "Path to ontoforge.toml (overrides search paths)")

	SecretCmd.AddCommand(secretEncryptCmd)
	SecretCmd.AddCommand(secretDecryptCmd)
}

func runSecretEncrypt(cmd *cobra.Command, args []string) error {
	key, err := encryptionKey()
	if err != nil {
		return err
	}
	plaintext, err := secretValue(args[0])
	if err != nil {
		return err
	}

	ciphertext, err := auth.Encrypt(plaintext, key)
	if err != nil {
		return errors.Wrap(err, "failed to encrypt secret")
	}
	fmt.Println(ciphertext)
	return nil
}

func runSecretDecrypt(cmd *cobra.Command, args []string) error {
	key, err := encryptionKey()
	if err != nil {
		return err
	}
	ciphertext, err := secretValue(args[0])
	if err != nil {
		return err
	}

	plaintext, err := auth.Decrypt(ciphertext, key)
	if err != nil {
		return errors.Wrap(err, "failed to decrypt secret")
	}
	fmt.Println(plaintext)
	return nil
}

func encryptionKey() (string, error) {
	cfg, err := loadConfig(secretConfigPath)
	if err != nil {
		return "", err
	}
	if cfg.Security.WebhookEncryptionKey == "" {
		return "", errors.Mark(errors.New("no webhook encryption key configured"), errors.ErrConfiguration)
	}
	return cfg.Security.WebhookEncryptionKey, nil
}

// secretValue resolves the value argument, reading stdin when it is "-".
func secretValue(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read secret from stdin")
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
