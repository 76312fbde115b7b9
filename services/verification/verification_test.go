package verification

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cargo-delivery/apperrors"
)

func TestGenerateProducesSixDigitCodes(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
		seen[code] = true
	}
	// 200 draws from 900000 values collide with negligible probability.
	require.Greater(t, len(seen), 190)
}

func TestCheck(t *testing.T) {
	code := "123456"
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	t.Run("no pending code", func(t *testing.T) {
		require.True(t, errors.Is(Check("123456", nil, nil), apperrors.ErrNotFound))
		empty := ""
		require.True(t, errors.Is(Check("123456", &empty, nil), apperrors.ErrNotFound))
	})

	t.Run("expired before comparison", func(t *testing.T) {
		err := Check("999999", &code, &past)
		require.True(t, errors.Is(err, apperrors.ErrExpired))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := Check("654321", &code, &future)
		require.True(t, errors.Is(err, apperrors.ErrInvalidCode))
	})

	t.Run("match with expiry", func(t *testing.T) {
		require.NoError(t, Check("123456", &code, &future))
	})

	t.Run("match without expiry", func(t *testing.T) {
		require.NoError(t, Check("123456", &code, nil))
	})
}
