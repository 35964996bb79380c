// Command tokengen mints tokens for local development against the API.
//
// By default it prints a bearer token for an account:
//
//	go run ./tools/tokengen -account acct-123
//
// With -state it prints an OAuth state value instead, signed with
// OAUTH_STATE_SECRET, so the Google Ads callback can be driven by hand:
//
//	go run ./tools/tokengen -account acct-123 -state
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/giannis84/ad-intelligence/internal/auth"
	"github.com/golang-jwt/jwt/v5"
)

func main() {
	accountID := flag.String("account", "", "account ID to embed as the sub claim (required)")
	secret := flag.String("secret", "", "HMAC signing secret (defaults to JWT_SECRET, or OAUTH_STATE_SECRET with -state)")
	expiry := flag.Duration("exp", 24*time.Hour, "token expiry duration (e.g. 1h, 72h); state values default to 10m")
	state := flag.Bool("state", false, "issue an OAuth state value instead of a bearer token")
	flag.Parse()

	if *accountID == "" {
		fmt.Fprintln(os.Stderr, "error: -account flag is required")
		flag.Usage()
		os.Exit(1)
	}

	if *state {
		signingSecret := firstNonEmpty(*secret, os.Getenv("OAUTH_STATE_SECRET"))
		ttl := 10 * time.Minute
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "exp" {
				ttl = *expiry
			}
		})
		signed, err := auth.IssueState(signingSecret, *accountID, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error issuing state: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OAuth state for account %s (valid %s):\n", *accountID, ttl)
		fmt.Println(signed)
		return
	}

	signed, expiresAt, err := bearerToken(*accountID, firstNonEmpty(*secret, os.Getenv("JWT_SECRET")), *expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Token for account %s (expires %s):\n", *accountID, expiresAt.Format(time.RFC3339))
	fmt.Println(signed)
}

// bearerToken signs with HS256, or returns an alg=none token when no secret
// is available. The service only accepts those with unsigned tokens enabled.
func bearerToken(accountID, secret string, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)
	claims := jwt.MapClaims{
		"sub": accountID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	if secret == "" {
		fmt.Fprintln(os.Stderr, "Warning: token is unsigned (alg=none); do not use in production")
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		return signed, expiresAt, err
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return signed, expiresAt, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
