package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for bearer token verification
type Auth struct {
	jwksURL    string
	hmacSecret string
	audience   string
	issuer     string
	roleClaim  string
	noAuthSub  string
	noAuthRole string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS URL of the identity provider",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESDESK_AUTH_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "auth-hmac-secret",
			Usage:       "Shared secret for HS256 tokens (used when no JWKS URL is set)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESDESK_AUTH_HMAC_SECRET"),
			Destination: &x.hmacSecret,
		},
		&cli.StringFlag{
			Name:        "auth-audience",
			Usage:       "Required aud claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESDESK_AUTH_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.StringFlag{
			Name:        "auth-issuer",
			Usage:       "Required iss claim",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESDESK_AUTH_ISSUER"),
			Destination: &x.issuer,
		},
		&cli.StringFlag{
			Name:        "auth-role-claim",
			Usage:       "Claim carrying the user role",
			Category:    "Authentication",
			Value:       usecase.DefaultRoleClaim,
			Sources:     cli.EnvVars("SALESDESK_AUTH_ROLE_CLAIM"),
			Destination: &x.roleClaim,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the given user ID (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("SALESDESK_NO_AUTH"),
			Destination: &x.noAuthSub,
		},
		&cli.StringFlag{
			Name:        "no-auth-role",
			Usage:       "Role of the --no-auth user",
			Category:    "Authentication",
			Value:       types.RoleAdmin.String(),
			Sources:     cli.EnvVars("SALESDESK_NO_AUTH_ROLE"),
			Destination: &x.noAuthRole,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("jwks_url", x.jwksURL),
		slog.Int("hmac_secret.len", len(x.hmacSecret)),
		slog.String("audience", x.audience),
		slog.String("issuer", x.issuer),
		slog.String("role_claim", x.roleClaim),
		slog.String("no_auth", x.noAuthSub),
	)
}

// IsNoAuthMode reports whether every request runs as a fixed user
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthSub != ""
}

// IsConfigured reports whether tokens can be verified
func (x *Auth) IsConfigured() bool {
	return x.jwksURL != "" || x.hmacSecret != ""
}

// Configure returns the authenticator. Without any setting it returns nil and
// every API request is anonymous.
func (x *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if x.IsNoAuthMode() {
		role := types.Role(x.noAuthRole)
		if !role.IsValid() {
			return nil, goerr.Wrap(ErrInvalidRole, "invalid no-auth role", goerr.V(RoleKey, x.noAuthRole))
		}
		return usecase.NewNoAuthnUseCase(x.noAuthSub, x.noAuthSub+"@localhost", x.noAuthSub, role), nil
	}
	if !x.IsConfigured() {
		return nil, nil
	}

	opts := []usecase.AuthOption{
		usecase.WithAudience(x.audience),
		usecase.WithIssuer(x.issuer),
		usecase.WithRoleClaim(x.roleClaim),
	}
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	} else {
		opts = append(opts, usecase.WithHMACSecret(x.hmacSecret))
	}

	authUC, err := usecase.NewAuthUseCase(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create auth use case")
	}
	return authUC, nil
}
