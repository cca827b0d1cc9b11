package main

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/simplegit/pkg/repo"
)

const commitSignaturePrefix = "sshsig-v1"

// newSSHCommitSigner loads an SSH private key and returns a signer producing
// "sshsig-v1:<format>:<base64 public key>:<base64 signature>" strings.
func newSSHCommitSigner(keyPath string) (repo.CommitSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}

	pub := signer.PublicKey()
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())

	commitSigner := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", commitSignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
	return commitSigner, resolvedPath, nil
}

// newSSHCommitVerifier checks signatures made by newSSHCommitSigner. When
// trusted is non-empty, the embedded public key must be one of them.
func newSSHCommitVerifier(trusted []ssh.PublicKey) repo.CommitVerifier {
	return func(payload []byte, signature string) error {
		parts := strings.SplitN(signature, ":", 4)
		if len(parts) != 4 || parts[0] != commitSignaturePrefix {
			return fmt.Errorf("unrecognized signature encoding")
		}
		pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
		if err != nil {
			return fmt.Errorf("decode public key: %w", err)
		}
		blob, err := base64.StdEncoding.DecodeString(parts[3])
		if err != nil {
			return fmt.Errorf("decode signature: %w", err)
		}
		pub, err := ssh.ParsePublicKey(pubRaw)
		if err != nil {
			return fmt.Errorf("parse public key: %w", err)
		}

		if len(trusted) > 0 && !containsKey(trusted, pub) {
			return fmt.Errorf("signed by untrusted key %s", ssh.FingerprintSHA256(pub))
		}
		return pub.Verify(payload, &ssh.Signature{Format: parts[1], Blob: blob})
	}
}

func containsKey(keys []ssh.PublicKey, k ssh.PublicKey) bool {
	want := k.Marshal()
	for _, candidate := range keys {
		if bytes.Equal(candidate.Marshal(), want) {
			return true
		}
	}
	return false
}

// loadTrustedKeys reads authorized_keys-format public keys from path.
func loadTrustedKeys(path string) ([]ssh.PublicKey, error) {
	expanded, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	rest, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read trusted keys %q: %w", expanded, err)
	}

	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(rest)) > 0 {
		var pub ssh.PublicKey
		pub, _, _, rest, err = ssh.ParseAuthorizedKey(rest)
		if err != nil {
			return nil, fmt.Errorf("parse trusted keys %q: %w", expanded, err)
		}
		keys = append(keys, pub)
	}
	if len(keys) == 0 {
		return nil, errors.New("no public keys in " + expanded)
	}
	return keys, nil
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		expanded, err := expandUserPath(path)
		if err != nil {
			return "", err
		}
		return expanded, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
