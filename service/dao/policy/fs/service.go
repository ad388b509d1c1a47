package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/dao"
	"github.com/clearledger/policykit/service/dao/criteria"
)

// Service implements a filesystem-backed policy store. Each policy is
// persisted as one JSON document under the base path, which can point at any
// afs-supported storage scheme.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, model.Policy] = (*Service)(nil)

// Save persists a policy document.
func (s *Service) Save(ctx context.Context, policy *model.Policy) error {
	if policy == nil {
		return dao.ErrNilEntity
	}
	if policy.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	filePath := s.policyPath(policy.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save policy to %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a policy document by id.
func (s *Service) Load(ctx context.Context, id string) (*model.Policy, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.policyPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if policy exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("policy %s: %w", id, dao.ErrNotFound)
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var policy model.Policy
	if err = json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy data: %w", err)
	}
	return &policy, nil
}

// Delete removes a policy document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.policyPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if policy exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("policy %s: %w", id, dao.ErrNotFound)
	}

	if err = s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete policy file: %w", err)
	}
	return nil
}

// List returns all stored policies, optionally filtered by a "Status"
// parameter. Unreadable documents are skipped so that one corrupt file does
// not hide the remaining policies.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list policy files: %w", err)
	}

	var policies []*model.Policy
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var policy model.Policy
		if err = json.Unmarshal(data, &policy); err != nil {
			continue
		}
		if !criteria.FilterByStatus(string(policy.Status), parameters) {
			continue
		}
		policies = append(policies, &policy)
	}
	return policies, nil
}

func (s *Service) policyPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem policy store rooted at basePath, creating the
// directory when missing.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fsService := afs.New()
	ctx := context.Background()
	exists, _ := fsService.Exists(ctx, basePath)
	if !exists {
		if err := fsService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{basePath: basePath, fs: fsService}, nil
}
