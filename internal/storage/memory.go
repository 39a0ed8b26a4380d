package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"
)

var (
	ErrBadSignature = errors.New("object link signature invalid")
	ErrLinkExpired  = errors.New("object link expired")
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps objects in process. Used in development and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewMemory returns a store whose signed URLs point at baseURL and are
// signed with an HMAC-SHA256 of key and expiry under secret.
func NewMemory(baseURL string, secret []byte) *Memory {
	return &Memory{objects: map[string]memoryObject{}, baseURL: baseURL, secret: secret, now: time.Now}
}

func (m *Memory) sign(key, expires string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(key + "|" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, contentType string, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (m *Memory) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	expires := strconv.FormatInt(m.now().Add(ttl).Unix(), 10)
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("sig", m.sign(key, expires))
	return fmt.Sprintf("%s/objects/%s?%s", m.baseURL, key, q.Encode()), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns a copy of a stored object.
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}

// Open returns an object for a link issued by SignedURL. The signature is checked
// before the expiry so a forged expires value is never trusted.
func (m *Memory) Open(key, expires, sig string) ([]byte, string, error) {
	if sig == "" || !hmac.Equal([]byte(sig), []byte(m.sign(key, expires))) {
		return nil, "", ErrBadSignature
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || m.now().Unix() > exp {
		return nil, "", ErrLinkExpired
	}
	data, contentType, ok := m.Get(key)
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return data, contentType, nil
}
