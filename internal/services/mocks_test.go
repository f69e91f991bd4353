package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

// mockRepository is an in-memory Repository with real compare-and-swap
// behavior, so the services' conflict paths can be exercised without a
// database.
type mockRepository struct {
	identities map[string]*models.Identity
	requests   map[uint]*models.AccessRequest
	weights    map[string]*models.TrustWeight
	flags      map[uint]*models.ContentFlag

	nextRequestID uint
	nextFlagID    uint

	// forcedErr, when set, is returned by every repository call. Used to
	// drive storage-failure paths.
	forcedErr error

	// beforeStatusCAS runs just before a status swap checks its
	// expectation; tests use it to slip in a concurrent writer.
	beforeStatusCAS func()
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		identities: make(map[string]*models.Identity),
		requests:   make(map[uint]*models.AccessRequest),
		weights:    make(map[string]*models.TrustWeight),
		flags:      make(map[uint]*models.ContentFlag),
	}
}

func (m *mockRepository) Identity() repositories.IdentityRepository         { return &mockIdentityRepo{m} }
func (m *mockRepository) AccessRequest() repositories.AccessRequestRepository {
	return &mockAccessRequestRepo{m}
}
func (m *mockRepository) TrustWeight() repositories.TrustWeightRepository { return &mockTrustWeightRepo{m} }
func (m *mockRepository) ContentFlag() repositories.ContentFlagRepository { return &mockContentFlagRepo{m} }

func (m *mockRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(context.Context) error { return m.forcedErr }
func (m *mockRepository) Close() error               { return nil }

// seedIdentity installs an identity directly, bypassing the service layer.
func (m *mockRepository) seedIdentity(username string, restricted bool, roles ...models.Capability) {
	m.identities[username] = &models.Identity{
		Username:   username,
		Roles:      models.RoleSet(roles),
		Restricted: restricted,
	}
}

func copyIdentity(i *models.Identity) *models.Identity {
	out := *i
	out.Roles = append(models.RoleSet{}, i.Roles...)
	return &out
}

func copyRequest(r *models.AccessRequest) *models.AccessRequest {
	out := *r
	if r.ReopenedFromID != nil {
		id := *r.ReopenedFromID
		out.ReopenedFromID = &id
	}
	return &out
}

func copyFlag(f *models.ContentFlag) *models.ContentFlag {
	out := *f
	return &out
}

// ----- identities -----

type mockIdentityRepo struct{ m *mockRepository }

func (r *mockIdentityRepo) Create(_ context.Context, identity *models.Identity) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	if _, ok := r.m.identities[identity.Username]; ok {
		return fmt.Errorf("duplicate identity %s", identity.Username)
	}
	r.m.identities[identity.Username] = copyIdentity(identity)
	return nil
}

func (r *mockIdentityRepo) GetByUsername(_ context.Context, username string) (*models.Identity, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	identity, ok := r.m.identities[username]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyIdentity(identity), nil
}

func (r *mockIdentityRepo) Update(_ context.Context, identity *models.Identity) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	if _, ok := r.m.identities[identity.Username]; !ok {
		return repositories.ErrNotFound
	}
	r.m.identities[identity.Username] = copyIdentity(identity)
	return nil
}

func (r *mockIdentityRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if r.m.forcedErr != nil {
		return false, r.m.forcedErr
	}
	_, ok := r.m.identities[username]
	return ok, nil
}

func (r *mockIdentityRepo) List(_ context.Context, limit, offset int) ([]*models.Identity, int64, error) {
	if r.m.forcedErr != nil {
		return nil, 0, r.m.forcedErr
	}
	usernames := make([]string, 0, len(r.m.identities))
	for u := range r.m.identities {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)

	var out []*models.Identity
	for i, u := range usernames {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, copyIdentity(r.m.identities[u]))
	}
	return out, int64(len(r.m.identities)), nil
}

// ----- access requests -----

type mockAccessRequestRepo struct{ m *mockRepository }

func (r *mockAccessRequestRepo) Create(_ context.Context, request *models.AccessRequest) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	r.m.nextRequestID++
	request.ID = r.m.nextRequestID
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	r.m.requests[request.ID] = copyRequest(request)
	return nil
}

func (r *mockAccessRequestRepo) GetByID(_ context.Context, id uint) (*models.AccessRequest, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	request, ok := r.m.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyRequest(request), nil
}

func (r *mockAccessRequestRepo) GetPendingByUsername(_ context.Context, username string) (*models.AccessRequest, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	for _, request := range r.m.requests {
		if request.Username == username && request.Status == models.RequestPending {
			return copyRequest(request), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockAccessRequestRepo) HasPendingByUsername(_ context.Context, username string) (bool, error) {
	if r.m.forcedErr != nil {
		return false, r.m.forcedErr
	}
	for _, request := range r.m.requests {
		if request.Username == username && request.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockAccessRequestRepo) UpdateStatusCAS(_ context.Context, id uint, expectedStatus models.RequestStatus, expectedVersion int, newStatus models.RequestStatus) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	if r.m.beforeStatusCAS != nil {
		r.m.beforeStatusCAS()
	}
	request, ok := r.m.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if request.Status != expectedStatus || request.Version != expectedVersion {
		return repositories.ErrStaleVersion
	}
	request.Status = newStatus
	request.Version++
	return nil
}

func (r *mockAccessRequestRepo) UpdateDescriptionCAS(_ context.Context, id uint, expectedVersion int, description string) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	request, ok := r.m.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if request.Version != expectedVersion || request.Status == models.RequestClosed {
		return repositories.ErrStaleVersion
	}
	request.Description = description
	return nil
}

func (r *mockAccessRequestRepo) List(_ context.Context, filters repositories.AccessRequestFilters) ([]*models.AccessRequest, int64, error) {
	if r.m.forcedErr != nil {
		return nil, 0, r.m.forcedErr
	}
	var out []*models.AccessRequest
	for _, request := range r.m.requests {
		if filters.Status != nil && request.Status != *filters.Status {
			continue
		}
		if filters.Username != nil && request.Username != *filters.Username {
			continue
		}
		out = append(out, copyRequest(request))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockAccessRequestRepo) ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.AccessRequest, error) {
	out, _, err := r.List(ctx, repositories.AccessRequestFilters{Status: &status})
	return out, err
}

// ----- trust weights -----

type mockTrustWeightRepo struct{ m *mockRepository }

func weightKey(truster, trustee string) string { return truster + "|" + trustee }

func (r *mockTrustWeightRepo) Upsert(_ context.Context, weight *models.TrustWeight) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	w := *weight
	r.m.weights[weightKey(weight.TrusterUsername, weight.TrusteeUsername)] = &w
	return nil
}

func (r *mockTrustWeightRepo) Get(_ context.Context, truster, trustee string) (*models.TrustWeight, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	weight, ok := r.m.weights[weightKey(truster, trustee)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	w := *weight
	return &w, nil
}

func (r *mockTrustWeightRepo) Delete(_ context.Context, truster, trustee string) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	delete(r.m.weights, weightKey(truster, trustee))
	return nil
}

func (r *mockTrustWeightRepo) ListByTruster(_ context.Context, truster string) ([]*models.TrustWeight, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	var out []*models.TrustWeight
	for _, weight := range r.m.weights {
		if weight.TrusterUsername == truster && weight.Weight > 0 {
			w := *weight
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrusteeUsername < out[j].TrusteeUsername })
	return out, nil
}

// ----- content flags -----

type mockContentFlagRepo struct{ m *mockRepository }

func (r *mockContentFlagRepo) Create(_ context.Context, flag *models.ContentFlag) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	r.m.nextFlagID++
	flag.ID = r.m.nextFlagID
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = time.Now()
	}
	r.m.flags[flag.ID] = copyFlag(flag)
	return nil
}

func (r *mockContentFlagRepo) GetByID(_ context.Context, id uint) (*models.ContentFlag, error) {
	if r.m.forcedErr != nil {
		return nil, r.m.forcedErr
	}
	flag, ok := r.m.flags[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyFlag(flag), nil
}

func (r *mockContentFlagRepo) ResolveCAS(_ context.Context, id uint, expectedVersion int) error {
	if r.m.forcedErr != nil {
		return r.m.forcedErr
	}
	flag, ok := r.m.flags[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if flag.Resolved || flag.Version != expectedVersion {
		return repositories.ErrStaleVersion
	}
	flag.Resolved = true
	flag.Version++
	return nil
}

func (r *mockContentFlagRepo) List(_ context.Context, filters repositories.ContentFlagFilters) ([]*models.ContentFlag, int64, error) {
	if r.m.forcedErr != nil {
		return nil, 0, r.m.forcedErr
	}
	var out []*models.ContentFlag
	for _, flag := range r.m.flags {
		if filters.TargetType != nil && flag.TargetType != *filters.TargetType {
			continue
		}
		if filters.Resolved != nil && flag.Resolved != *filters.Resolved {
			continue
		}
		out = append(out, copyFlag(flag))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockContentFlagRepo) ListUnresolved(ctx context.Context) ([]*models.ContentFlag, error) {
	resolved := false
	out, _, err := r.List(ctx, repositories.ContentFlagFilters{Resolved: &resolved})
	return out, err
}

// ----- collaborators -----

// stubContentReader returns a canned snippet, or an error when set.
type stubContentReader struct {
	snippet string
	err     error
	calls   int
}

func (s *stubContentReader) Snippet(_ context.Context, _ models.FlagTargetType, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.snippet, nil
}
