// Package authjwt is an optional helper for wiring server.AuthenticateFunc
// to a JWT carried in the upgrade request's token query parameter,
// grounded on bringyour-connect/connect/jwt.go's use of
// golang-jwt/jwt/v5 — generalized from that file's ParseUnverified
// (which only extracts claims) into a verifying parse, since an
// authentication gate needs an actual accept/reject decision rather
// than just an unverified claim set.
package authjwt

import (
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/yuzu-sync/yuzu/server"
)

// Claims is the decoded, verified token payload handed to a Validate
// callback.
type Claims = gojwt.MapClaims

// Validate inspects verified claims and decides whether the connection
// is admitted. Returning false rejects with 401; a non-nil error
// rejects with 500 (server.AuthenticateFunc's contract).
type Validate func(claims Claims, info server.AuthInfo) (bool, error)

// KeyFunc resolves the verification key for a token, mirroring
// gojwt.Keyfunc so callers can plug in fixed secrets, JWKS lookups, or
// per-issuer key sets.
type KeyFunc = gojwt.Keyfunc

// Authenticate builds a server.AuthenticateFunc that reads the token
// query parameter, verifies it with keyFunc, and delegates the
// accept/reject decision to validate. A missing or unverifiable token
// rejects the connection (false, nil) rather than erroring, since an
// absent/bad token is a normal unauthenticated request, not a server
// fault.
func Authenticate(keyFunc KeyFunc, validate Validate) server.AuthenticateFunc {
	parser := gojwt.NewParser()
	return func(info server.AuthInfo) (bool, error) {
		tokens := info.Query["token"]
		if len(tokens) == 0 || tokens[0] == "" {
			return false, nil
		}

		token, err := parser.Parse(tokens[0], keyFunc)
		if err != nil || !token.Valid {
			return false, nil
		}

		claims, ok := token.Claims.(gojwt.MapClaims)
		if !ok {
			return false, nil
		}

		return validate(claims, info)
	}
}
