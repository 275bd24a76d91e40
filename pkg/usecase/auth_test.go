package usecase_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

const testSecret = "test-secret-with-enough-entropy"

func buildToken(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) jwt.Token {
	t.Helper()
	b := jwt.NewBuilder().
		Subject("rep-42").
		Audience([]string{"salesdesk"}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("email", "rep@example.com").
		Claim("name", "Rep 42").
		Claim("role", "sales_rep")
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	gt.NoError(t, err).Required()
	return tok
}

func signHMAC(t *testing.T, tok jwt.Token, secret string) string {
	t.Helper()
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(secret)))
	gt.NoError(t, err).Required()
	return string(signed)
}

func TestAuthenticateHMAC(t *testing.T) {
	auth, err := usecase.NewAuthUseCase(
		usecase.WithHMACSecret(testSecret),
		usecase.WithAudience("salesdesk"),
	)
	gt.NoError(t, err).Required()
	gt.Bool(t, auth.IsNoAuthn()).False()
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		p, err := auth.Authenticate(ctx, signHMAC(t, buildToken(t, nil), testSecret))
		gt.NoError(t, err).Required()
		gt.String(t, p.Sub).Equal("rep-42")
		gt.String(t, p.Email).Equal("rep@example.com")
		gt.String(t, p.Name).Equal("Rep 42")
		gt.Value(t, p.Role).Equal(types.RoleSalesRep)
	})

	t.Run("unknown role degrades to viewer", func(t *testing.T) {
		tok := buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Claim("role", "superuser") })
		p, err := auth.Authenticate(ctx, signHMAC(t, tok, testSecret))
		gt.NoError(t, err).Required()
		gt.Value(t, p.Role).Equal(types.RoleViewer)
	})

	testCases := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{name: "empty", token: func(t *testing.T) string { return "" }},
		{name: "garbage", token: func(t *testing.T) string { return "not-a-jwt" }},
		{name: "wrong secret", token: func(t *testing.T) string {
			return signHMAC(t, buildToken(t, nil), "another-secret")
		}},
		{name: "wrong audience", token: func(t *testing.T) string {
			tok := buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Audience([]string{"billing"}) })
			return signHMAC(t, tok, testSecret)
		}},
		{name: "expired", token: func(t *testing.T) string {
			tok := buildToken(t, func(b *jwt.Builder) *jwt.Builder {
				return b.IssuedAt(time.Now().Add(-2 * time.Hour)).Expiration(time.Now().Add(-time.Hour))
			})
			return signHMAC(t, tok, testSecret)
		}},
		{name: "no subject", token: func(t *testing.T) string {
			tok := buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Subject("") })
			return signHMAC(t, tok, testSecret)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Authenticate(ctx, tc.token(t))
			gt.Error(t, err).Is(usecase.ErrUnauthenticated)
		})
	}
}

func TestAuthenticateCustomRoleClaim(t *testing.T) {
	auth, err := usecase.NewAuthUseCase(
		usecase.WithHMACSecret(testSecret),
		usecase.WithRoleClaim("salesdesk_role"),
		usecase.WithIssuer("https://idp.example.com"),
	)
	gt.NoError(t, err).Required()

	tok := buildToken(t, func(b *jwt.Builder) *jwt.Builder {
		return b.Claim("salesdesk_role", "manager").Issuer("https://idp.example.com")
	})
	p, err := auth.Authenticate(context.Background(), signHMAC(t, tok, testSecret))
	gt.NoError(t, err).Required()
	gt.Value(t, p.Role).Equal(types.RoleManager)

	other := buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Issuer("https://evil.example.com") })
	_, err = auth.Authenticate(context.Background(), signHMAC(t, other, testSecret))
	gt.Error(t, err).Is(usecase.ErrUnauthenticated)
}

func TestAuthenticateJWKS(t *testing.T) {
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err).Required()
	key, err := jwk.FromRaw(raw)
	gt.NoError(t, err).Required()
	gt.NoError(t, key.Set(jwk.KeyIDKey, "key-1")).Required()
	gt.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256)).Required()

	pub, err := jwk.PublicKeyOf(key)
	gt.NoError(t, err).Required()
	set := jwk.NewSet()
	gt.NoError(t, set.AddKey(pub)).Required()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	auth, err := usecase.NewAuthUseCase(usecase.WithJWKSURL(srv.URL))
	gt.NoError(t, err).Required()

	signed, err := jwt.Sign(buildToken(t, nil), jwt.WithKey(jwa.RS256, key))
	gt.NoError(t, err).Required()

	p, err := auth.Authenticate(context.Background(), string(signed))
	gt.NoError(t, err).Required()
	gt.String(t, p.Sub).Equal("rep-42")

	_, err = auth.Authenticate(context.Background(), signHMAC(t, buildToken(t, nil), testSecret))
	gt.Error(t, err).Is(usecase.ErrUnauthenticated)
}

func TestNewAuthUseCaseRequiresKeys(t *testing.T) {
	_, err := usecase.NewAuthUseCase(usecase.WithAudience("salesdesk"))
	gt.Value(t, err).NotNil()
}

func TestNoAuthn(t *testing.T) {
	auth := usecase.NewNoAuthnUseCase("dev", "dev@example.com", "Developer", types.RoleAdmin)
	gt.Bool(t, auth.IsNoAuthn()).True()

	p, err := auth.Authenticate(context.Background(), "")
	gt.NoError(t, err).Required()
	gt.String(t, p.Sub).Equal("dev")
	gt.Value(t, p.Role).Equal(types.RoleAdmin)

	// Callers may not change the configured principal
	p.Role = types.RoleViewer
	again, err := auth.Authenticate(context.Background(), "")
	gt.NoError(t, err).Required()
	gt.Value(t, again.Role).Equal(types.RoleAdmin)
}
