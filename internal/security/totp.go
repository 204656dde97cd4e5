package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// totpIssuer is shown by authenticator apps next to the account name.
const totpIssuer = "Energee Admin"

// GenerateTOTPSecret creates a new TOTP secret and its otpauth:// provisioning URL.
func GenerateTOTPSecret(accountName string) (secret string, url string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
	})
	if errGenerate != nil {
		return "", "", fmt.Errorf("security: generate totp: %w", errGenerate)
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP reports whether code is valid for secret at now.
func ValidateTOTP(secret, code string, now time.Time) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	valid, errValidate := totp.ValidateCustom(code, secret, now.UTC(), totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	return errValidate == nil && valid
}
