package credstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/logger"
)

// Profile is a named, non-secret connection descriptor. A persisted
// profile never carries a password: SaveConnection moves the password
// into the secret keyspace and strips it before the registry is written.
type Profile struct {
	Name                   string `json:"name"`
	Server                 string `json:"server,omitempty"`
	Port                   string `json:"port,omitempty"`
	Database               string `json:"database,omitempty"`
	Username               string `json:"username,omitempty"`
	Password               string `json:"password,omitempty"`
	Driver                 string `json:"driver,omitempty"` // sqlserver (default) or postgres
	Encrypt                *bool  `json:"encrypt,omitempty"`
	TrustServerCertificate *bool  `json:"trustServerCertificate,omitempty"`
	UseConnectionString    bool   `json:"useConnectionString,omitempty"`
	ConnectionString       string `json:"connectionString,omitempty"`
}

// Result is the uniform outcome of lifecycle operations. Lifecycle
// methods report failures as data so a caller can surface them inline
// without a recover boundary.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store persists named connection profiles with secrets isolated in a
// separate keyspace. The registry is loaded once via Initialize and
// re-written wholesale after every mutation.
type Store struct {
	registry  Medium
	secrets   Medium
	namespace string

	mu       sync.RWMutex
	profiles map[string]Profile
	order    []string
}

// New creates a Store over the given mediums. The registry medium holds
// the whole-registry snapshot; the secrets medium holds one entry per
// profile password. They may be the same medium since the key namespaces
// are distinct.
func New(registry, secrets Medium, namespace string) *Store {
	return &Store{
		registry:  registry,
		secrets:   secrets,
		namespace: namespace,
		profiles:  make(map[string]Profile),
	}
}

func (s *Store) connectionsKey() string {
	return s.namespace + ".connections"
}

func (s *Store) passwordKey(name string) string {
	return s.namespace + ".password." + name
}

// Initialize loads the registry from the durable medium. A missing
// registry key is an empty registry; an unreadable or malformed payload
// is a StorageReadError and leaves the registry empty rather than
// partially populated.
func (s *Store) Initialize(ctx context.Context) error {
	data, err := s.registry.Read(ctx, s.connectionsKey())
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return &StorageReadError{Key: s.connectionsKey(), Err: err}
	}

	profiles, order, err := decodeRegistry(data)
	if err != nil {
		return &StorageReadError{Key: s.connectionsKey(), Err: err}
	}

	s.mu.Lock()
	s.profiles = profiles
	s.order = order
	s.mu.Unlock()

	logger.Debug("connection registry loaded", "count", len(order))
	return nil
}

// SaveConnection validates and upserts a profile. Any supplied password
// is written to the secret keyspace first, then the stripped profile is
// persisted with the rest of the registry. The secret-then-registry
// write order means a crash in between leaves at worst an orphaned
// secret, never a profile that falsely claims a password exists.
func (s *Store) SaveConnection(ctx context.Context, p Profile) Result {
	if strings.TrimSpace(p.Name) == "" {
		err := &ValidationError{Field: "name", Reason: "connection name is required"}
		return Result{Success: false, Message: "Failed to save connection: " + err.Error()}
	}

	password := p.Password
	p.Password = ""

	if password != "" {
		if err := s.secrets.Write(ctx, s.passwordKey(p.Name), []byte(password)); err != nil {
			werr := &StorageWriteError{Key: s.passwordKey(p.Name), Err: err}
			logger.Error("saving connection secret", "name", p.Name, "error", err)
			return Result{Success: false, Message: "Failed to save connection: " + werr.Error()}
		}
	}

	s.mu.Lock()
	if _, exists := s.profiles[p.Name]; !exists {
		s.order = append(s.order, p.Name)
	}
	s.profiles[p.Name] = p
	err := s.persistRegistryLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		logger.Error("persisting connection registry", "name", p.Name, "error", err)
		return Result{Success: false, Message: "Failed to save connection: " + err.Error()}
	}

	logger.Info("connection saved", "name", p.Name)
	return Result{Success: true, Message: fmt.Sprintf("Connection '%s' saved successfully", p.Name)}
}

// DeleteConnection removes a profile and its secret. Secret deletion is
// best-effort: a profile saved without a password has no secret entry,
// and that is not an error.
func (s *Store) DeleteConnection(ctx context.Context, name string) Result {
	s.mu.Lock()
	_, exists := s.profiles[name]
	s.mu.Unlock()
	if !exists {
		err := &NotFoundError{Name: name}
		return Result{Success: false, Message: "Failed to delete connection: " + err.Error()}
	}

	if err := s.secrets.Delete(ctx, s.passwordKey(name)); err != nil && !errors.Is(err, ErrKeyNotFound) {
		logger.Warn("deleting connection secret", "name", name, "error", err)
	}

	s.mu.Lock()
	delete(s.profiles, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	err := s.persistRegistryLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		logger.Error("persisting connection registry", "name", name, "error", err)
		return Result{Success: false, Message: "Failed to delete connection: " + err.Error()}
	}

	logger.Info("connection deleted", "name", name)
	return Result{Success: true, Message: fmt.Sprintf("Connection '%s' deleted successfully", name)}
}

// GetSavedConnections returns all profiles in insertion order, without
// secrets.
func (s *Store) GetSavedConnections() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.profiles[name])
	}
	return out
}

// GetConnection returns the profile for name, without a secret attached.
func (s *Store) GetConnection(name string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	return p, ok
}

// GetConnectionPassword returns the stored secret for name. A missing
// secret is a legitimate state (integrated authentication) and returns
// an empty string with no error.
func (s *Store) GetConnectionPassword(ctx context.Context, name string) (string, error) {
	data, err := s.secrets.Read(ctx, s.passwordKey(name))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", &StorageReadError{Key: s.passwordKey(name), Err: err}
	}
	return string(data), nil
}

// HasConnection reports whether a profile named name exists.
func (s *Store) HasConnection(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[name]
	return ok
}

// ConnectionCount returns the number of saved profiles.
func (s *Store) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ClearAllConnections deletes every secret entry, empties the registry,
// and re-persists it. Used for reset and testing.
func (s *Store) ClearAllConnections(ctx context.Context) Result {
	s.mu.Lock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	s.mu.Unlock()

	for _, name := range names {
		if err := s.secrets.Delete(ctx, s.passwordKey(name)); err != nil && !errors.Is(err, ErrKeyNotFound) {
			logger.Warn("deleting connection secret", "name", name, "error", err)
		}
	}

	s.mu.Lock()
	s.profiles = make(map[string]Profile)
	s.order = nil
	err := s.persistRegistryLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return Result{Success: false, Message: "Failed to clear connections: " + err.Error()}
	}
	return Result{Success: true, Message: "All connections cleared"}
}

// persistRegistryLocked writes the full registry snapshot. Callers hold s.mu.
func (s *Store) persistRegistryLocked(ctx context.Context) error {
	data, err := encodeRegistry(s.profiles, s.order)
	if err != nil {
		return &StorageWriteError{Key: s.connectionsKey(), Err: err}
	}
	if err := s.registry.Write(ctx, s.connectionsKey(), data); err != nil {
		return &StorageWriteError{Key: s.connectionsKey(), Err: err}
	}
	return nil
}

// encodeRegistry marshals the registry as a JSON object whose keys
// appear in insertion order, so order survives a reload.
func encodeRegistry(profiles map[string]Profile, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(profiles[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeRegistry walks the JSON object token by token so key order is
// preserved; unmarshalling into a Go map would lose it.
func decodeRegistry(data []byte) (map[string]Profile, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("registry payload is not a JSON object")
	}

	profiles := make(map[string]Profile)
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("registry key is not a string")
		}

		var p Profile
		if err := dec.Decode(&p); err != nil {
			return nil, nil, err
		}
		// Registry keys are the source of truth for names, and a
		// persisted profile never carries a password.
		p.Name = key
		p.Password = ""

		if _, dup := profiles[key]; !dup {
			order = append(order, key)
		}
		profiles[key] = p
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return profiles, order, nil
}
