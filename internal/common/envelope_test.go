package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_CarriesMessage(t *testing.T) {
	env := NewEnvelope(fmt.Errorf("upload: %w", ErrUnauthorized))
	require.Equal(t, "upload: unauthorized", env.Error)

	b, err := json.Marshal(env)
	require.NoError(t, err)
	require.JSONEq(t, `{"error":"upload: unauthorized"}`, string(b))
}

func TestNewEnvelope_NilError(t *testing.T) {
	require.Equal(t, Envelope{}, NewEnvelope(nil))
}

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{ErrNotFound, ErrUnauthorized, ErrUnavailable, ErrNotSignedIn,
		ErrTokenExpired, ErrRefreshTokenExpired, ErrInvalidToken, ErrInvalidClip}
	for i := range all {
		for j := range all {
			if i != j {
				require.False(t, errors.Is(all[i], all[j]), "%v matches %v", all[i], all[j])
			}
		}
	}
}
