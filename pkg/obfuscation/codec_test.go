package obfuscation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	codec, err := New(secret)
	require.NoError(t, err)
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	inputs := []string{"Luis", "Ana", "José María", "李", "a", "O'Connor-Smith", "  padded  "}
	for _, input := range inputs {
		concealed := codec.Obfuscate(input)
		assert.NotEqual(t, input, concealed)

		revealed, err := codec.Deobfuscate(concealed)
		require.NoError(t, err)
		assert.Equal(t, input, revealed)
	}
}

func TestCodecDeterministic(t *testing.T) {
	first := newTestCodec(t, "test-secret")
	second := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "other-secret")

	assert.Equal(t, first.Obfuscate("Luis"), first.Obfuscate("Luis"))
	assert.Equal(t, first.Obfuscate("Luis"), second.Obfuscate("Luis"))
	assert.NotEqual(t, first.Obfuscate("Luis"), other.Obfuscate("Luis"))
}

func TestCodecEmptyValue(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	assert.Equal(t, "", codec.Obfuscate(""))

	revealed, err := codec.Deobfuscate("")
	require.NoError(t, err)
	assert.Equal(t, "", revealed)
}

func TestCodecDeobfuscateMalformed(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	_, err := codec.Deobfuscate("not base64!")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
