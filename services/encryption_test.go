package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptConfigRoundtrip(t *testing.T) {
	t.Setenv("CONFIG_ENCRYPTION_KEY", "test-key")

	plaintext := []byte(`{"botId":"bot-123","rowsApiKey":"secret"}`)

	envelope, err := EncryptConfig(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, envelope, "secret")

	decrypted, err := DecryptConfig(envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptConfigUniqueNonce(t *testing.T) {
	t.Setenv("CONFIG_ENCRYPTION_KEY", "test-key")

	first, err := EncryptConfig([]byte("same input"))
	require.NoError(t, err)
	second, err := EncryptConfig([]byte("same input"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptConfigRejectsGarbage(t *testing.T) {
	t.Setenv("CONFIG_ENCRYPTION_KEY", "test-key")

	_, err := DecryptConfig("not base64 at all!!!")
	assert.Error(t, err)

	_, err = DecryptConfig("c2hvcnQ=") // valid base64, too short for a nonce
	assert.Error(t, err)
}

func TestDecryptConfigWrongKey(t *testing.T) {
	t.Setenv("CONFIG_ENCRYPTION_KEY", "key-one")
	envelope, err := EncryptConfig([]byte("payload"))
	require.NoError(t, err)

	t.Setenv("CONFIG_ENCRYPTION_KEY", "key-two")
	_, err = DecryptConfig(envelope)
	assert.Error(t, err)
}
