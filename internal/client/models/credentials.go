package models

import "time"

// Credentials is the token bundle issued by the token service. The S3
// key pair is scoped to the signed-in account; the access token
// authenticates calls to the token service itself.
type Credentials struct {
	AccessKeyID     string    `json:"accessKeyId"`
	SecretAccessKey string    `json:"secretAccessKey"`
	AccessToken     string    `json:"accessToken"`
	RefreshToken    string    `json:"refreshToken"`
	Expiry          time.Time `json:"expiry"`
}

// Empty reports whether no credentials are held.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// ExpiresWithin reports whether the credentials are expired at now+skew.
// A zero Expiry never expires.
func (c Credentials) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(skew).Before(c.Expiry)
}
