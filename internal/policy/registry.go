package policy

import (
	"fmt"
	"sort"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

// DefaultPolicyID is the preset used when none is configured.
const DefaultPolicyID = "mitv-home"

// Registry holds the known launcher policy presets.
type Registry struct {
	policies map[string]AppPolicy
}

// NewRegistry creates a registry with all presets using adb on PATH.
func NewRegistry() *Registry {
	return NewRegistryWithADB("adb")
}

// NewRegistryWithADB creates a registry whose presets invoke the given adb binary.
func NewRegistryWithADB(adb string) *Registry {
	return NewRegistryWithPolicies(NewMiTVHomePolicyWithADB(adb))
}

// NewRegistryWithPolicies creates a registry with custom policies (for testing).
func NewRegistryWithPolicies(policies ...AppPolicy) *Registry {
	r := &Registry{
		policies: make(map[string]AppPolicy),
	}
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds a policy, replacing any with the same ID.
func (r *Registry) Register(p AppPolicy) {
	r.policies[p.ID()] = p
}

// Get returns a policy by ID.
func (r *Registry) Get(id string) (AppPolicy, bool) {
	p, ok := r.policies[id]
	return p, ok
}

// GetAll returns all registered policies ordered by ID.
func (r *Registry) GetAll() []AppPolicy {
	result := make([]AppPolicy, 0, len(r.policies))
	for _, id := range r.List() {
		result = append(result, r.policies[id])
	}
	return result
}

// List returns all policy IDs in sorted order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the preset with the given ID with overrides applied.
func (r *Registry) Resolve(id string, o Overrides) (domain.Policy, error) {
	if id == "" {
		id = DefaultPolicyID
	}
	p, ok := r.Get(id)
	if !ok {
		return domain.Policy{}, fmt.Errorf("policy not found: %s", id)
	}
	return ToPolicy(WithOverrides(p, o)), nil
}

// RegistryPolicyStore adapts Registry to implement domain.PolicyStore interface.
type RegistryPolicyStore struct {
	registry *Registry
}

// NewPolicyStore creates a PolicyStore backed by the given Registry.
func NewPolicyStore(r *Registry) domain.PolicyStore {
	return &RegistryPolicyStore{registry: r}
}

func (s *RegistryPolicyStore) GetAll() []domain.Policy {
	policies := s.registry.GetAll()
	result := make([]domain.Policy, len(policies))
	for i, p := range policies {
		result[i] = ToPolicy(p)
	}
	return result
}

func (s *RegistryPolicyStore) GetByID(id string) (*domain.Policy, error) {
	p, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("policy not found: %s", id)
	}
	policy := ToPolicy(p)
	return &policy, nil
}

func (s *RegistryPolicyStore) List() []string {
	return s.registry.List()
}

// Ensure RegistryPolicyStore implements domain.PolicyStore.
var _ domain.PolicyStore = (*RegistryPolicyStore)(nil)
