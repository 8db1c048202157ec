package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/ports"
)

// Mask replaces the value of every redacted key.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks, before saving, the values
// of object keys in the snapshot data matching any of the patterns.
// Masking applies at any depth, including objects inside arrays.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, snap domain.Snapshot) error {
	if len(snap.Data) > 0 && len(m.patterns) > 0 {
		// Decoding yields fresh maps, so the caller's bytes are never touched.
		var data any
		if err := json.Unmarshal(snap.Data, &data); err != nil {
			return fmt.Errorf("failed to decode snapshot data for masking: %w", err)
		}
		masked, err := json.Marshal(m.mask(data))
		if err != nil {
			return err
		}
		snap.Data = masked
	}
	return m.next.Save(ctx, key, snap)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) (domain.Snapshot, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, sub := range val {
			if m.matches(k) {
				val[k] = Mask
				continue
			}
			val[k] = m.mask(sub)
		}
	case []any:
		for i, sub := range val {
			val[i] = m.mask(sub)
		}
	}
	return v
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
