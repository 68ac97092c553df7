package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Davincible/rijndael/pkg/config"
	"github.com/Davincible/rijndael/pkg/envelope"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigPath = "/config/rijndael.json"

// setupCLI points the commands at a memory filesystem with a config that
// keeps PBKDF2 cheap.
func setupCLI(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	old := appFs
	appFs = fs
	t.Cleanup(func() { appFs = old })
	t.Setenv("RIJNDAEL_CONFIG", testConfigPath)

	cm, err := config.NewConfigManagerAt(fs, testConfigPath)
	require.NoError(t, err)
	cfg := cm.GetConfig()
	cfg.KDF.Iterations = 1000
	cfg.UI.UseColor = false
	cm.SetConfig(cfg)
	require.NoError(t, cm.SaveConfig())

	return fs
}

type cliResult struct {
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin []byte, args ...string) (cliResult, error) {
	t.Helper()

	root := NewRootCommand("test", nil)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(bytes.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String()}, err
}

func testPlaintext() []byte {
	return bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 50)
}

func TestEncryptDecryptWithHexKey(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{"config defaults", nil},
		{"ctr wide block", []string{"--mode", "CTR", "--block-bits", "256"}},
		{"random delta custom modulus", []string{"--mode", "RandomDelta", "--modulus", "x^8 + x^6 + x^3 + x^2 + 1"}},
		{"ecb ansi", []string{"--mode", "ECB", "--padding", "ansi-x9.23", "--block-bits", "192"}},
		{"pcbc iso", []string{"--mode", "pcbc", "--padding", "ISO10126", "--workers", "3", "--chunk-size", "100"}},
	}

	keyHex := strings.Repeat("a5", 24)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupCLI(t)
			plaintext := testPlaintext()
			require.NoError(t, afero.WriteFile(fs, "/data/plain.txt", plaintext, 0o644))

			args := append([]string{"encrypt", "-i", "/data/plain.txt", "-o", "/data/plain.rjnd", "--key-hex", keyHex}, tt.flags...)
			res, err := runCLI(t, nil, args...)
			require.NoError(t, err)
			assert.Contains(t, res.stdout, "Encrypted /data/plain.txt -> /data/plain.rjnd")
			assert.Contains(t, res.stdout, "key 192 bits")

			sealed, err := afero.ReadFile(fs, "/data/plain.rjnd")
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(sealed, []byte(envelope.Magic)))
			assert.NotContains(t, string(sealed), "quick brown fox")

			_, err = runCLI(t, nil, "decrypt", "-i", "/data/plain.rjnd", "-o", "/data/back.txt", "--key-hex", keyHex)
			require.NoError(t, err)

			back, err := afero.ReadFile(fs, "/data/back.txt")
			require.NoError(t, err)
			assert.Equal(t, plaintext, back)
		})
	}
}

func TestEncryptDecryptWithPassphrase(t *testing.T) {
	fs := setupCLI(t)
	require.NoError(t, afero.WriteFile(fs, "/plain", testPlaintext(), 0o644))

	_, err := runCLI(t, nil, "encrypt", "-i", "/plain", "-o", "/sealed", "--passphrase", "correct horse battery", "--key-bits", "128")
	require.NoError(t, err)

	sealed, err := fs.Open("/sealed")
	require.NoError(t, err)
	h, err := envelope.ReadHeader(sealed)
	sealed.Close()
	require.NoError(t, err)
	require.NotNil(t, h.KDF)
	assert.Equal(t, 1000, h.KDF.Iterations)
	assert.Equal(t, 128, h.KeyBits)

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := runCLI(t, nil, "decrypt", "-i", "/sealed", "-o", "/out", "--passphrase", "wrong horse battery")
		assert.ErrorIs(t, err, envelope.ErrWrongKey)

		exists, err := afero.Exists(fs, "/out")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("raw key on passphrase envelope", func(t *testing.T) {
		_, err := runCLI(t, nil, "decrypt", "-i", "/sealed", "-o", "/out", "--key-hex", strings.Repeat("00", 16))
		assert.ErrorContains(t, err, "passphrase protected")
	})

	t.Run("prompted passphrase", func(t *testing.T) {
		res, err := runCLI(t, []byte("correct horse battery\n"), "decrypt", "-i", "/sealed", "-o", "/out")
		require.NoError(t, err)
		assert.Contains(t, res.stderr, "Enter passphrase")

		back, err := afero.ReadFile(fs, "/out")
		require.NoError(t, err)
		assert.Equal(t, testPlaintext(), back)
	})
}

func TestEncryptShortPassphrase(t *testing.T) {
	fs := setupCLI(t)
	require.NoError(t, afero.WriteFile(fs, "/plain", []byte("x"), 0o644))

	_, err := runCLI(t, nil, "encrypt", "-i", "/plain", "-o", "/sealed", "--passphrase", "short")
	assert.ErrorContains(t, err, "at least 8 characters")
}

func TestMnemonicKeyMatchesHexKey(t *testing.T) {
	fs := setupCLI(t)
	require.NoError(t, afero.WriteFile(fs, "/plain", testPlaintext(), 0o644))

	phrase := "legal winner thank year wave sausage worth useful legal winner thank yellow"
	_, err := runCLI(t, nil, "encrypt", "-i", "/plain", "-o", "/sealed", "--mnemonic", phrase)
	require.NoError(t, err)

	_, err = runCLI(t, nil, "decrypt", "-i", "/sealed", "-o", "/back", "--key-hex", strings.Repeat("7f", 16))
	require.NoError(t, err)

	back, err := afero.ReadFile(fs, "/back")
	require.NoError(t, err)
	assert.Equal(t, testPlaintext(), back)
}

func TestStdinStdout(t *testing.T) {
	setupCLI(t)
	keyHex := strings.Repeat("3c", 32)
	plaintext := testPlaintext()

	res, err := runCLI(t, plaintext, "encrypt", "-i", "-", "-o", "/sealed", "--key-hex", keyHex, "--mode", "OFB")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "Encrypted - -> /sealed")

	res, err = runCLI(t, nil, "decrypt", "-i", "/sealed", "-o", "-", "--key-hex", keyHex)
	require.NoError(t, err)
	assert.Equal(t, string(plaintext), res.stdout)
	assert.Contains(t, res.stderr, "Decrypted /sealed -> -")
}

func TestEncryptRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		wantErr string
	}{
		{"unknown mode", []string{"--mode", "GCM"}, "unknown cipher mode"},
		{"unknown padding", []string{"--padding", "OAEP"}, "unknown padding"},
		{"reducible modulus", []string{"--modulus", "0x1C"}, "reducible"},
		{"block size", []string{"--block-bits", "64"}, "block size must be"},
		{"key size mismatch", []string{"--key-bits", "256"}, "expected 256"},
		{"chunk size", []string{"--chunk-size=-1"}, "chunk size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := setupCLI(t)
			require.NoError(t, afero.WriteFile(fs, "/plain", []byte("data"), 0o644))

			args := append([]string{"encrypt", "-i", "/plain", "-o", "/sealed", "--key-hex", strings.Repeat("11", 16)}, tt.flags...)
			_, err := runCLI(t, nil, args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEncryptInPlaceRefused(t *testing.T) {
	fs := setupCLI(t)
	plaintext := testPlaintext()
	require.NoError(t, afero.WriteFile(fs, "/data/doc.txt", plaintext, 0o644))
	keyHex := strings.Repeat("11", 16)

	_, err := runCLI(t, nil, "encrypt", "-i", "/data/doc.txt", "-o", "/data/doc.txt", "--key-hex", keyHex)
	assert.ErrorContains(t, err, "same file")

	_, err = runCLI(t, nil, "decrypt", "-i", "/data/doc.txt", "-o", "/data/./doc.txt", "--key-hex", keyHex)
	assert.ErrorContains(t, err, "same file")

	got, err := afero.ReadFile(fs, "/data/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptNeedsKey(t *testing.T) {
	fs := setupCLI(t)
	require.NoError(t, afero.WriteFile(fs, "/plain", []byte("data"), 0o644))

	_, err := runCLI(t, nil, "encrypt", "-i", "/plain", "-o", "/sealed", "--key-hex", strings.Repeat("11", 16))
	require.NoError(t, err)

	_, err = runCLI(t, nil, "decrypt", "-i", "/sealed", "-o", "/out")
	assert.ErrorContains(t, err, "use --key-hex or --mnemonic")
}

func TestInvalidConfig(t *testing.T) {
	fs := setupCLI(t)
	require.NoError(t, afero.WriteFile(fs, testConfigPath, []byte(`{"defaults": {"mode": "GCM"}}`), 0o600))

	_, err := runCLI(t, nil, "key", "generate")
	assert.ErrorContains(t, err, "defaults.mode")
}

func TestKeyGenerate(t *testing.T) {
	setupCLI(t)

	res, err := runCLI(t, nil, "key", "generate", "--bits", "192", "--json")
	require.NoError(t, err)

	var info KeyInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, 192, info.Bits)
	assert.Len(t, info.Hex, 48)
	assert.Len(t, strings.Fields(info.Mnemonic), 18)
	assert.Len(t, info.Fingerprint, 8)

	res, err = runCLI(t, nil, "key", "generate")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "NEW MASTER KEY")
	assert.Contains(t, res.stdout, "Bits:        256")

	_, err = runCLI(t, nil, "key", "generate", "--bits", "100")
	assert.Error(t, err)
}

func TestKeySplitCombine(t *testing.T) {
	setupCLI(t)
	keyHex := "000102030405060708090a0b0c0d0e0f"

	res, err := runCLI(t, nil, "key", "split", "--key-hex", keyHex, "--parts", "4", "--threshold", "2", "--json")
	require.NoError(t, err)

	var split SplitResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &split))
	require.Len(t, split.Shares, 4)
	assert.Equal(t, 2, split.Threshold)

	res, err = runCLI(t, nil, "key", "combine", split.Shares[3], split.Shares[1], "--json")
	require.NoError(t, err)

	var info KeyInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, keyHex, info.Hex)
	assert.Equal(t, split.Fingerprint, info.Fingerprint)

	t.Run("prompted key", func(t *testing.T) {
		res, err := runCLI(t, []byte(keyHex+"\n"), "key", "split", "--parts", "3", "--threshold", "2")
		require.NoError(t, err)
		assert.Contains(t, res.stdout, "Created 3 shares, any 2 rebuild the key")
	})

	t.Run("bad params", func(t *testing.T) {
		_, err := runCLI(t, nil, "key", "split", "--key-hex", keyHex, "--parts", "2", "--threshold", "3")
		assert.ErrorContains(t, err, "threshold must be between")
	})

	t.Run("bad share", func(t *testing.T) {
		_, err := runCLI(t, nil, "key", "combine", "zz", split.Shares[0])
		assert.ErrorContains(t, err, "invalid hex")
	})
}

func TestFieldCommands(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"multiply", []string{"field", "multiply", "57", "83"}, "c1\n"},
		{"multiply other modulus", []string{"field", "multiply", "0x02", "0x80", "--modulus", "0x1D"}, "1d\n"},
		{"inverse", []string{"field", "inverse", "53"}, "ca\n"},
		{"inverse of zero", []string{"field", "inverse", "00"}, "00\n"},
		{"irreducible", []string{"field", "check", "x^8 + x^4 + x^3 + x + 1"}, "is irreducible"},
		{"reducible", []string{"field", "check", "0x11C"}, "is reducible"},
		{"factor", []string{"field", "factor", "x^2 + 1"}, "= (x + 1)^2"},
		{"list", []string{"field", "list"}, "0x1B  x^8 + x^4 + x^3 + x + 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runCLI(t, nil, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, res.stdout, tt.want)
		})
	}

	_, err := runCLI(t, nil, "field", "multiply", "100", "2")
	assert.ErrorContains(t, err, "invalid field element")

	_, err = runCLI(t, nil, "field", "inverse", "3", "--modulus", "0x00")
	assert.ErrorContains(t, err, "reducible")
}

func TestFieldJSON(t *testing.T) {
	setupCLI(t)

	res, err := runCLI(t, nil, "field", "list", "--json")
	require.NoError(t, err)
	var moduli []modulusInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &moduli))
	require.Len(t, moduli, 30)
	assert.Equal(t, "0x1B", moduli[0].Modulus)

	res, err = runCLI(t, nil, "field", "factor", "--json", "x^3 + x")
	require.NoError(t, err)
	var factored struct {
		Complete bool         `json:"complete"`
		Factors  []factorJSON `json:"factors"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &factored))
	assert.True(t, factored.Complete)
	assert.ElementsMatch(t, []factorJSON{
		{Polynomial: "x", Multiplicity: 1},
		{Polynomial: "x + 1", Multiplicity: 2},
	}, factored.Factors)
}

func TestModesCommand(t *testing.T) {
	setupCLI(t)

	res, err := runCLI(t, nil, "modes", "--json")
	require.NoError(t, err)

	var listing modesListing
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &listing))
	require.Len(t, listing.Modes, 7)
	assert.Equal(t, modeInfo{Name: "ECB", Stream: false, RequiresIV: false}, listing.Modes[0])
	assert.Equal(t, modeInfo{Name: "RandomDelta", Stream: true, RequiresIV: true}, listing.Modes[6])
	assert.Equal(t, []string{"Zeros", "PKCS7", "ANSIX923", "ISO10126"}, listing.Paddings)

	res, err = runCLI(t, nil, "modes")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "CBC          block, padded, IV")
}

func TestSelfTest(t *testing.T) {
	for _, r := range RunSelfTests() {
		assert.True(t, r.Passed, "%s: %s", r.Name, r.Detail)
	}

	setupCLI(t)
	res, err := runCLI(t, nil, "selftest")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "✓ FIPS-197 C.3 AES-256")
	assert.Contains(t, res.stdout, "self-tests passed")
}

func TestParseElement(t *testing.T) {
	b, err := parseElement(" 0xFE ")
	require.NoError(t, err)
	assert.Equal(t, byte(0xFE), b)

	_, err = parseElement("g1")
	assert.Error(t, err)

	assert.Equal(t, "x^8 + x^4 + x^3 + x + 1", modulusPoly(0x1B))
}

func TestRawKeyAcceptsPastedInput(t *testing.T) {
	want := bytes.Repeat([]byte{0x7f}, 16)

	hexKey := keyFlags{keyHex: "  0x" + strings.Repeat("7f", 16) + "\r\n"}
	key, err := hexKey.rawKey(128)
	require.NoError(t, err)
	assert.Equal(t, want, key)

	words := keyFlags{words: " legal winner thank year wave sausage\r\n worth useful legal winner thank yellow \r\n"}
	key, err = words.rawKey(0)
	require.NoError(t, err)
	assert.Equal(t, want, key)

	_, err = words.rawKey(256)
	assert.ErrorContains(t, err, "expected 256")
}
