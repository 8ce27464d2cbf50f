package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"cloudctl/internal/cli"
)

const (
	// profilesFileName is the name of the profiles file.
	profilesFileName = "profiles.yaml"
	// userConfigDir is the subdirectory under home for cloudctl configuration.
	userConfigDir = ".config/cloudctl"
)

// Storage provides thread-safe access to the profiles file.
// It handles loading, saving, and manipulating profiles.yaml.
type Storage struct {
	mu       sync.RWMutex
	filePath string
}

// NewStorage creates a new Storage instance using the default path,
// ~/.config/cloudctl/profiles.yaml.
func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}

	return NewStorageWithPath(filepath.Join(homeDir, userConfigDir)), nil
}

// NewStorageWithPath creates a Storage that keeps profiles.yaml in configDir.
func NewStorageWithPath(configDir string) *Storage {
	return &Storage{filePath: filepath.Join(configDir, profilesFileName)}
}

// NewStorageWithFile creates a Storage backed by an explicit file.
func NewStorageWithFile(path string) *Storage {
	return &Storage{filePath: path}
}

// Path returns the profiles file path.
func (s *Storage) Path() string {
	return s.filePath
}

// Load reads and parses the profiles file.
// If the file doesn't exist, an empty Config is returned.
func (s *Storage) Load() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadLocked()
}

func (s *Storage) loadLocked() (*Config, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	return &config, nil
}

// Save writes the profiles file, creating its directory if needed.
func (s *Storage) Save(config *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(config)
}

// saveLocked writes with owner-only permissions since the file holds tokens.
func (s *Storage) saveLocked(config *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}

	return nil
}

// LookupProfile implements cli.ProfileStore. The name "default" resolves to
// the default profile.
func (s *Storage) LookupProfile(name string) (cli.Profile, bool, error) {
	config, err := s.Load()
	if err != nil {
		return cli.Profile{}, false, err
	}

	var p *Profile
	if name == cli.DefaultProfileName {
		p = config.ResolveDefault()
	} else {
		p = config.GetProfile(name)
	}
	if p == nil {
		return cli.Profile{}, false, nil
	}
	return cli.Profile{Name: p.Name, Token: p.Token, Environment: p.Environment}, true, nil
}

// GetProfile returns the profile with the given name, or nil if it doesn't exist.
func (s *Storage) GetProfile(name string) (*Profile, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}
	return config.GetProfile(name), nil
}

// HasProfile reports whether a profile exists.
func (s *Storage) HasProfile(name string) (bool, error) {
	p, err := s.GetProfile(name)
	return p != nil, err
}

// ListProfiles returns all profiles sorted by name.
func (s *Storage) ListProfiles() ([]Profile, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}

	profiles := append([]Profile(nil), config.Profiles...)
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// DefaultProfileName returns the name of the default profile, or an empty
// string when none is configured.
func (s *Storage) DefaultProfileName() (string, error) {
	config, err := s.Load()
	if err != nil {
		return "", err
	}
	if p := config.ResolveDefault(); p != nil {
		return p.Name, nil
	}
	return "", nil
}

// PutProfile validates and stores p, replacing a profile of the same name.
// When makeDefault is set, p also becomes the default profile.
func (s *Storage) PutProfile(p Profile, makeDefault bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	config.AddOrUpdateProfile(p)
	if makeDefault {
		config.DefaultProfile = p.Name
	}

	return s.saveLocked(config)
}

// DeleteProfile removes a profile by name.
// If the deleted profile was the default, no default remains.
func (s *Storage) DeleteProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if !config.RemoveProfile(name) {
		return &ProfileNotFoundError{Name: name}
	}

	return s.saveLocked(config)
}

// SetDefault makes name the default profile.
// Returns an error if the profile doesn't exist.
func (s *Storage) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}

	if !config.HasProfile(name) {
		return &ProfileNotFoundError{Name: name}
	}

	config.DefaultProfile = name
	return s.saveLocked(config)
}
