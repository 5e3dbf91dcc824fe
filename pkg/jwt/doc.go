// Package jwt signs and validates RS256 access tokens for the Hearth API.
//
// Tokens carry the user id as the subject:
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/private.pem",
//	    Issuer:         "hearth",
//	    ExpirationMins: 60,
//	})
//	token, err := svc.Sign(userID, email)
//	claims, err := svc.Validate(token)
//
// Validation accepts only RS256 and, when configured, the expected issuer.
package jwt
