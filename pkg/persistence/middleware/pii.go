package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks node configuration values
// whose keys match the patterns before the snapshot is persisted. Hosts use
// this to keep credentials and personal data out of stored documents while
// the live editing session still sees the real values.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, docID string, snap *domain.Snapshot) error {
	// Deep clone so the in-memory snapshot used by the editor is untouched.
	cloned := snap.Clone()
	for i := range cloned.Nodes {
		maskConfiguration(cloned.Nodes[i].Configuration, m.patterns)
	}
	return m.next.Save(ctx, docID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, docID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, docID)
}

func (m *piiMiddleware) Delete(ctx context.Context, docID string) error {
	return m.next.Delete(ctx, docID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskConfiguration(cfg map[string]string, patterns []*regexp.Regexp) {
	for k := range cfg {
		for _, p := range patterns {
			if p.MatchString(k) {
				cfg[k] = "***"
				break
			}
		}
	}
}
