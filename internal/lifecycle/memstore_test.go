package lifecycle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evidenceledger/certissuer/internal/models"
)

// memoryStore is an in-memory Store for tests
type memoryStore struct {
	mu             sync.RWMutex
	subjects       map[string]*models.Subject
	certs          map[string]*models.SignedCertificate
	nextID         int64
	failFind       error
	failInsert     error
	inserts        int
	subjectInserts int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		subjects: make(map[string]*models.Subject),
		certs:    make(map[string]*models.SignedCertificate),
	}
}

func (m *memoryStore) FindCertificate(ctx context.Context, identity string) (*models.SignedCertificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failFind != nil {
		return nil, m.failFind
	}
	cert, ok := m.certs[identity]
	if !ok {
		return nil, nil
	}
	c := *cert
	return &c, nil
}

func (m *memoryStore) FindSubject(ctx context.Context, externalID string) (*models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subject, ok := m.subjects[externalID]
	if !ok {
		return nil, nil
	}
	s := *subject
	return &s, nil
}

func (m *memoryStore) InsertSubject(ctx context.Context, subject *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subjects[subject.ExternalID]; ok {
		return models.ErrSubjectExists
	}
	m.nextID++
	subject.ID = m.nextID
	s := *subject
	m.subjects[subject.ExternalID] = &s
	m.subjectInserts++
	return nil
}

func (m *memoryStore) InsertCertificate(ctx context.Context, cert *models.SignedCertificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInsert != nil {
		return m.failInsert
	}
	m.nextID++
	cert.ID = m.nextID
	c := *cert
	m.certs[cert.Identity] = &c
	m.inserts++
	return nil
}

func (m *memoryStore) MarkRevoked(ctx context.Context, identity, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cert, ok := m.certs[identity]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now()
	cert.Revoked = true
	cert.RevocationReason = reason
	cert.RevokedAt = &now
	return nil
}

func (m *memoryStore) ListCertificates(ctx context.Context) ([]models.SignedCertificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.SignedCertificate, 0, len(m.certs))
	for _, c := range m.certs {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// tamper overwrites a stored fact behind the service's back
func (m *memoryStore) tamper(identity string, fn func(*models.SignedCertificate)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.certs[identity])
}
