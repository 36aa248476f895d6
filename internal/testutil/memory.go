package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/xxxsen/docvault/internal/model"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

// MemoryStore is an in-process stand-in for the postgres repositories. It
// implements the share, document, folder, company and user stores.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]model.User
	companies map[int64]model.Company
	folders   map[int64]model.Folder
	documents map[int64]model.Document
	shares    map[int64]*model.Share

	// IncrementErr, when set, is returned by IncrementAccessCount.
	IncrementErr error
	// CompanyLookups counts ListSummaries calls.
	CompanyLookups int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     map[int64]model.User{},
		companies: map[int64]model.Company{},
		folders:   map[int64]model.Folder{},
		documents: map[int64]model.Document{},
		shares:    map[int64]*model.Share{},
	}
}

func (m *MemoryStore) AddUser(user model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MemoryStore) AddCompany(company model.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[company.ID] = company
}

func (m *MemoryStore) AddFolder(folder model.Folder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[folder.ID] = folder
}

func (m *MemoryStore) AddDocument(doc model.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = doc
}

// DeleteDocument mirrors the cascading foreign keys: document shares of the
// document go away and the id drops out of multiple shares.
func (m *MemoryStore) DeleteDocument(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, id)
	for shareID, share := range m.shares {
		if share.DocumentID != nil && *share.DocumentID == id {
			delete(m.shares, shareID)
			continue
		}
		kept := share.DocumentIDs[:0]
		for _, docID := range share.DocumentIDs {
			if docID != id {
				kept = append(kept, docID)
			}
		}
		share.DocumentIDs = kept
	}
}

// ShareCount reports how many shares are stored.
func (m *MemoryStore) ShareCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shares)
}

// ShareByToken returns a copy of the stored share, ignoring expiry.
func (m *MemoryStore) ShareByToken(token string) (model.Share, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, share := range m.shares {
		if share.Token == token {
			return cloneShare(share), true
		}
	}
	return model.Share{}, false
}

func (m *MemoryStore) Create(_ context.Context, share *model.Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.shares {
		if existing.Token == share.Token {
			return appErr.ErrConflict
		}
	}
	for _, id := range share.DocumentIDs {
		if _, ok := m.documents[id]; !ok {
			return appErr.ErrNotFound
		}
	}
	m.nextID++
	share.ID = m.nextID
	stored := cloneShare(share)
	m.shares[share.ID] = &stored
	return nil
}

func (m *MemoryStore) GetByToken(_ context.Context, token string) (*model.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, share := range m.shares {
		if share.Token == token {
			out := cloneShare(share)
			return &out, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m *MemoryStore) IncrementAccessCount(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrementErr != nil {
		return 0, m.IncrementErr
	}
	share, ok := m.shares[id]
	if !ok {
		return 0, appErr.ErrNotFound
	}
	share.AccessCount++
	return share.AccessCount, nil
}

func (m *MemoryStore) ListPrivateByEmail(_ context.Context, email string) ([]model.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Share, 0)
	for _, share := range m.shares {
		if share.IsPrivate() && share.TargetEmail != nil && *share.TargetEmail == email {
			out = append(out, cloneShare(share))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) GetOwned(_ context.Context, userID, docID int64) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[docID]
	if !ok || doc.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	return &doc, nil
}

func (m *MemoryStore) GetByID(_ context.Context, docID int64) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &doc, nil
}

func (m *MemoryStore) ListOwned(_ context.Context, userID int64, ids []int64) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.documents[id]; ok && doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *MemoryStore) ListByIDs(_ context.Context, ids []int64) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.documents[id]; ok {
			out = append(out, doc)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *MemoryStore) ListByFolder(_ context.Context, folderID int64) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Document, 0)
	for _, doc := range m.documents {
		if doc.FolderID != nil && *doc.FolderID == folderID {
			out = append(out, doc)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *MemoryStore) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	docs, err := m.ListByFolder(ctx, folderID)
	return len(docs), err
}

func (m *MemoryStore) ListSummaries(_ context.Context, ids []int64) (map[int64]model.CompanySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompanyLookups++
	out := make(map[int64]model.CompanySummary, len(ids))
	for _, id := range ids {
		if company, ok := m.companies[id]; ok {
			out[id] = model.CompanySummary{ID: company.ID, Name: company.Name}
		}
	}
	return out, nil
}

func (m *MemoryStore) ListUsers(_ context.Context, ids []int64) (map[int64]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]model.User, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

// Folders adapts the store to the folder lookups, whose method names collide
// with the document ones.
func (m *MemoryStore) Folders() *MemoryFolders {
	return &MemoryFolders{m: m}
}

// Users adapts the store to the user lookup.
func (m *MemoryStore) Users() *MemoryUsers {
	return &MemoryUsers{m: m}
}

type MemoryFolders struct {
	m *MemoryStore
}

func (f *MemoryFolders) GetOwned(_ context.Context, userID, folderID int64) (*model.Folder, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	folder, ok := f.m.folders[folderID]
	if !ok || folder.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	return &folder, nil
}

func (f *MemoryFolders) GetByID(_ context.Context, folderID int64) (*model.Folder, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	folder, ok := f.m.folders[folderID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &folder, nil
}

type MemoryUsers struct {
	m *MemoryStore
}

func (u *MemoryUsers) ListByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error) {
	return u.m.ListUsers(ctx, ids)
}

func sortDocuments(docs []model.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}

func cloneShare(share *model.Share) model.Share {
	out := *share
	if share.DocumentIDs != nil {
		out.DocumentIDs = append([]int64(nil), share.DocumentIDs...)
	}
	return out
}
