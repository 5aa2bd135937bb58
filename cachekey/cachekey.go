// Package cachekey computes deterministic, dependency-aware content
// hashes for targets, and combines several keys into one with a
// commutative-but-not-associative combinator.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/panux/anvil/graph"
)

// globalConstant is mixed into every generator version, so that a core
// upgrade which changes payload encoding can invalidate every existing
// key even if the user's own generator_version string is unchanged.
const globalConstant = "anvil-cachekey-v1"

// CacheKey is the result of hashing a target.
type CacheKey struct {
	ID       string
	Hash     string
	Payloads []graph.Payload
}

// Generator seeds every hash with a version string: the concatenation of
// a user-configured Version and the package-global constant. Bumping
// either invalidates every previously computed key.
type Generator struct {
	Version string
}

// New constructs a Generator using the given user-configured version.
func New(version string) *Generator {
	return &Generator{Version: version}
}

func (g *Generator) seed() string {
	return g.Version + "\x00" + globalConstant
}

// KeyForTarget computes a target's cache key. bg is the
// BuildGraph t was injected into - when transitive is true, KeyForTarget
// looks up each direct dependency's Target in g and recurses into it,
// folding in the sorted set of dependency hashes. The constructor's
// post-order injection guarantees every dependency of t is already
// present in g by the time t itself is.
func (g *Generator) KeyForTarget(bg *graph.BuildGraph, t *graph.Target, transitive bool) (CacheKey, error) {
	h := sha256.New()
	if _, err := h.Write([]byte(g.seed())); err != nil {
		return CacheKey{}, err
	}
	// Absorb the target type before the payload: two targets of different
	// types (eg. scala_library vs. python_library) at the same address
	// with byte-identical AbsorbHash output must still hash differently,
	// since they run a different build step.
	if _, err := fmt.Fprintf(h, "%d:%s;", len(t.Type), t.Type); err != nil {
		return CacheKey{}, err
	}
	if err := t.Payload.AbsorbHash(h); err != nil {
		return CacheKey{}, err
	}

	if transitive {
		hashes := make([]string, 0, len(t.Dependencies))
		for _, depAddr := range t.Dependencies {
			depTarget, ok := bg.Target(depAddr)
			if !ok {
				return CacheKey{}, fmt.Errorf("cachekey: dependency %s of %s not present in graph", depAddr, t.Address)
			}
			depKey, err := g.KeyForTarget(bg, depTarget, true)
			if err != nil {
				return CacheKey{}, err
			}
			hashes = append(hashes, depKey.Hash)
		}
		sort.Strings(hashes)
		for _, dh := range hashes {
			if _, err := h.Write([]byte(dh)); err != nil {
				return CacheKey{}, err
			}
		}
	}

	return CacheKey{
		ID:       t.Address.String(),
		Hash:     hex.EncodeToString(h.Sum(nil)),
		Payloads: []graph.Payload{t.Payload},
	}, nil
}

// Combine folds a set of cache keys into one. A single key is
// returned unchanged (identity in the singleton case). Otherwise the
// combined id is a readable join of the input ids, the hash is computed
// over the *sorted* list of input hashes (so Combine is commutative), and
// payloads are the sorted concatenation.
//
// Combine is deliberately not associative: combining three keys in one
// call may (and in general will) differ from combining two and then
// folding in the third. Callers needing a stable key over N keys must
// call Combine once with all N, not incrementally.
func Combine(keys []CacheKey) CacheKey {
	if len(keys) == 1 {
		return keys[0]
	}

	sorted := make([]CacheKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Hash != sorted[j].Hash {
			return sorted[i].Hash < sorted[j].Hash
		}
		return sorted[i].ID < sorted[j].ID
	})

	ids := make([]string, len(sorted))
	var payloads []graph.Payload
	h := sha256.New()
	for i, k := range sorted {
		ids[i] = k.ID
		h.Write([]byte(k.Hash))
		payloads = append(payloads, k.Payloads...)
	}

	return CacheKey{
		ID:       strings.Join(ids, "+"),
		Hash:     hex.EncodeToString(h.Sum(nil)),
		Payloads: payloads,
	}
}
