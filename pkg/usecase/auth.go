package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// DefaultRoleClaim is the JWT claim read as the principal role
const DefaultRoleClaim = "role"

// AuthUseCaseInterface resolves bearer tokens to principals
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies JWTs signed by an identity provider, either with the
// keys published at a JWKS URL or with a shared HMAC secret
type AuthUseCase struct {
	jwksURL    string
	keySet     jwk.Set
	hmacSecret []byte
	audience   string
	issuer     string
	roleClaim  string
	cache      *authCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL verifies tokens with the key set published at url
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithKeySet verifies tokens with a fixed key set
func WithKeySet(set jwk.Set) AuthOption {
	return func(uc *AuthUseCase) {
		uc.keySet = set
	}
}

// WithHMACSecret verifies HS256 tokens with secret
func WithHMACSecret(secret string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.hmacSecret = []byte(secret)
	}
}

// WithAudience requires the aud claim to contain audience
func WithAudience(audience string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.audience = audience
	}
}

// WithIssuer requires the iss claim to equal issuer
func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

// WithRoleClaim changes the claim read as the principal role
func WithRoleClaim(claim string) AuthOption {
	return func(uc *AuthUseCase) {
		if claim != "" {
			uc.roleClaim = claim
		}
	}
}

func NewAuthUseCase(options ...AuthOption) (*AuthUseCase, error) {
	uc := &AuthUseCase{
		roleClaim: DefaultRoleClaim,
		cache:     newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	if uc.keySet == nil && uc.jwksURL == "" && len(uc.hmacSecret) == 0 {
		return nil, goerr.New("either a JWKS URL or an HMAC secret is required")
	}
	return uc, nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Authenticate verifies token and returns the principal it names. Verified
// tokens are cached until they expire or for authCacheTTL, whichever is first.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if token == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "token is empty")
	}
	if p, ok := uc.cache.get(token); ok {
		return p, nil
	}

	parsed, err := uc.parse(ctx, token)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "failed to verify token", goerr.V("reason", err.Error()))
	}

	p, err := uc.principal(parsed)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "token does not name a principal", goerr.V("reason", err.Error()))
	}

	uc.cache.set(token, p, parsed.Expiration())
	return p, nil
}

func (uc *AuthUseCase) parse(ctx context.Context, token string) (jwt.Token, error) {
	// Allow 10 seconds of clock skew between us and the identity provider
	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}

	switch {
	case uc.keySet != nil:
		opts = append(opts, jwt.WithKeySet(uc.keySet))
	case uc.jwksURL != "":
		keySet, err := jwk.Fetch(ctx, uc.jwksURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch public keys", goerr.V("jwks_url", uc.jwksURL))
		}
		opts = append(opts, jwt.WithKeySet(keySet))
	default:
		opts = append(opts, jwt.WithKey(jwa.HS256, uc.hmacSecret))
	}

	if uc.audience != "" {
		opts = append(opts, jwt.WithAudience(uc.audience))
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}

	parsed, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify JWT token")
	}
	return parsed, nil
}

func (uc *AuthUseCase) principal(token jwt.Token) (*auth.Principal, error) {
	sub := token.Subject()
	if sub == "" {
		return nil, goerr.New("sub claim not found in token")
	}

	email := stringClaim(token, "email")
	name := stringClaim(token, "name")
	role := types.Role(stringClaim(token, uc.roleClaim))

	p := auth.NewPrincipal(sub, email, name, role)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// stringClaim returns a private claim as string, or "" when it is absent or
// has another type
func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
