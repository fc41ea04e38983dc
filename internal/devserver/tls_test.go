package devserver

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCert(t *testing.T, notBefore, notAfter time.Time) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func TestLoadTLS(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	certFile, keyFile := writeCert(t, now.Add(-time.Hour), now.Add(24*time.Hour))
	cfg, err := LoadTLS(certFile, keyFile, now)
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "localhost", cfg.Certificates[0].Leaf.Subject.CommonName)

	certFile, keyFile = writeCert(t, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	_, err = LoadTLS(certFile, keyFile, now)
	assert.ErrorIs(t, err, ErrCertExpired)

	certFile, keyFile = writeCert(t, now.Add(time.Hour), now.Add(48*time.Hour))
	_, err = LoadTLS(certFile, keyFile, now)
	assert.ErrorIs(t, err, ErrCertNotYetValid)

	_, err = LoadTLS(filepath.Join(t.TempDir(), "missing.crt"), keyFile, now)
	assert.Error(t, err)
}
