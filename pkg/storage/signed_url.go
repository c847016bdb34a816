package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner mints and verifies the signed tokens embedded in
// report download links. A token binds a job id and a file path to an
// expiry timestamp, so download URLs can be handed out without auth.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner builds a signer. A non positive ttl falls back to
// 24 hours.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a download token for the job's report file and the
// moment it stops being valid.
func (s *DownloadSigner) Sign(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("job id and file path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))

	token := strings.Join([]string{jobID, ts, encodedPath, s.signature(jobID, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Verify checks a token and returns the job id, file path and expiry it
// carries. allowExpired skips the timestamp check, which the cleanup
// sweep relies on to resolve paths of stale downloads.
func (s *DownloadSigner) Verify(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	jobID, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode file path: %w", err)
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed expiry timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)

	if !hmac.Equal([]byte(s.signature(jobID, ts, encodedPath)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}

	return jobID, string(rawPath), expiresAt, nil
}

func (s *DownloadSigner) signature(jobID, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s|%s", jobID, ts, encodedPath)
	return hex.EncodeToString(mac.Sum(nil))
}
