package client

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
)

// EncodeBytes and DecodeBytes carry binary fields as base64 strings.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBytes(s *structpb.Struct, field string) ([]byte, error) {
	v := StringField(s, field)
	if v == "" {
		return nil, fmt.Errorf("missing %s", field)
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	return b, nil
}

// StringField returns the string value of field, or "".
func StringField(s *structpb.Struct, field string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[field]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// CredentialsToStruct is the wire form of a credential bundle.
func CredentialsToStruct(c models.Credentials) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldAccessKeyID:     c.AccessKeyID,
		FieldSecretAccessKey: c.SecretAccessKey,
		FieldAccessToken:     c.AccessToken,
		FieldRefreshToken:    c.RefreshToken,
	}
	if !c.Expiry.IsZero() {
		fields[FieldExpiresAt] = c.Expiry.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(fields)
}

// credentialsFromStruct decodes a credential bundle. Without an explicit
// expires_at, the exp claim of the access token is used.
func credentialsFromStruct(s *structpb.Struct) (models.Credentials, error) {
	c := models.Credentials{
		AccessKeyID:     StringField(s, FieldAccessKeyID),
		SecretAccessKey: StringField(s, FieldSecretAccessKey),
		AccessToken:     StringField(s, FieldAccessToken),
		RefreshToken:    StringField(s, FieldRefreshToken),
	}
	if c.AccessToken == "" {
		return models.Credentials{}, fmt.Errorf("response carries no access token")
	}

	if raw := StringField(s, FieldExpiresAt); raw != "" {
		exp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Credentials{}, fmt.Errorf("parse %s: %w", FieldExpiresAt, err)
		}
		c.Expiry = exp
		return c, nil
	}

	c.Expiry = tokenExpiry(c.AccessToken)
	return c, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client only needs to know when to refresh. Opaque tokens yield zero.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.UTC()
}
