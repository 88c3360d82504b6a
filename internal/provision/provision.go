// Package provision holds one-off operational helpers run against live AWS
// resources through the aws CLI.
package provision

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"

	"github.com/tidwall/sjson"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

// PasswordLength is the size of generated database passwords.
const PasswordLength = 20

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SecretKey is the JSON field the password is stored under in the secret.
const SecretKey = "db-password"

// Provisioner rotates credentials using the aws CLI.
type Provisioner struct {
	runner ports.CommandRunner
	logger ports.Logger
	rand   io.Reader
}

// NewProvisioner creates a Provisioner drawing passwords from crypto/rand.
func NewProvisioner(runner ports.CommandRunner, logger ports.Logger) *Provisioner {
	return &Provisioner{runner: runner, logger: logger, rand: rand.Reader}
}

// WithRandom replaces the entropy source.
func (p *Provisioner) WithRandom(r io.Reader) *Provisioner {
	p.rand = r
	return p
}

// RDSPasswordToSecret sets a fresh master password on the RDS instance db and
// stores it as {"db-password": ...} in the secret secretArn.
func (p *Provisioner) RDSPasswordToSecret(ctx context.Context, db, secretArn string) error {
	password, err := NewPassword(p.rand, PasswordLength)
	if err != nil {
		return err
	}

	p.logger.Info("setting master password on " + db)
	if _, err := p.runner.Run(ctx, ports.Command{
		Argv: []string{
			"aws", "rds", "modify-db-instance",
			"--db-instance-identifier", db,
			"--master-user-password", password,
			"--apply-immediately",
		},
		Stdout: io.Discard,
	}); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set database password"), "db", db)
	}

	secret, err := sjson.Set("{}", SecretKey, password)
	if err != nil {
		return zerr.Wrap(err, "failed to encode secret")
	}
	p.logger.Info("storing password in " + secretArn)
	if _, err := p.runner.Run(ctx, ports.Command{
		Argv: []string{
			"aws", "secretsmanager", "put-secret-value",
			"--secret-id", secretArn,
			"--secret-string", secret,
		},
		Stdout: io.Discard,
	}); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store database password"), "secret", secretArn)
	}
	return nil
}

// RDSPasswordToS3 is not supported.
func (p *Provisioner) RDSPasswordToS3(_ context.Context, db, _, _ string) error {
	return zerr.With(zerr.Wrap(domain.ErrConfiguration, "storing passwords in s3 is not supported"), "db", db)
}

// PasswordToSecret is not supported.
func (p *Provisioner) PasswordToSecret(_ context.Context, _ int, secretArn string) error {
	return zerr.With(zerr.Wrap(domain.ErrConfiguration, "generic password generation is not supported"),
		"secret", secretArn)
}

// NewPassword draws n characters uniformly from [A-Za-z0-9].
func NewPassword(r io.Reader, n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(r, limit)
		if err != nil {
			return "", zerr.Wrap(err, "failed to generate password")
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
