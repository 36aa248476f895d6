package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/filestore"
	"github.com/xxxsen/docvault/internal/model"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
)

// Shares created without a positive lifetime expire this many years out.
const unlimitedShareYears = 100

type ShareStore interface {
	Create(ctx context.Context, share *model.Share) error
	GetByToken(ctx context.Context, token string) (*model.Share, error)
	IncrementAccessCount(ctx context.Context, id int64) (int64, error)
	ListPrivateByEmail(ctx context.Context, email string) ([]model.Share, error)
}

type DocumentStore interface {
	GetOwned(ctx context.Context, userID, docID int64) (*model.Document, error)
	GetByID(ctx context.Context, docID int64) (*model.Document, error)
	ListOwned(ctx context.Context, userID int64, ids []int64) ([]model.Document, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Document, error)
	ListByFolder(ctx context.Context, folderID int64) ([]model.Document, error)
	CountByFolder(ctx context.Context, folderID int64) (int, error)
}

type FolderStore interface {
	GetOwned(ctx context.Context, userID, folderID int64) (*model.Folder, error)
	GetByID(ctx context.Context, folderID int64) (*model.Folder, error)
}

type CompanyLookup interface {
	ListSummaries(ctx context.Context, ids []int64) (map[int64]model.CompanySummary, error)
}

type UserStore interface {
	ListByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error)
}

type MetricsRecorder interface {
	ShareCreated(shareType string)
	ShareResolved(shareType string)
}

// ShareDeps wires the share service. Files and Metrics are optional; Now
// defaults to time.Now.
type ShareDeps struct {
	Shares    ShareStore
	Documents DocumentStore
	Folders   FolderStore
	Companies CompanyLookup
	Users     UserStore
	Files     filestore.Store
	Metrics   MetricsRecorder
	BaseURL   string
	Now       func() time.Time
}

type ShareService struct {
	shares    ShareStore
	docs      DocumentStore
	folders   FolderStore
	companies CompanyLookup
	users     UserStore
	files     filestore.Store
	metrics   MetricsRecorder
	baseURL   string
	now       func() time.Time
	tracer    trace.Tracer
}

func NewShareService(deps ShareDeps) *ShareService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ShareService{
		shares:    deps.Shares,
		docs:      deps.Documents,
		folders:   deps.Folders,
		companies: deps.Companies,
		users:     deps.Users,
		files:     deps.Files,
		metrics:   deps.Metrics,
		baseURL:   strings.TrimSuffix(deps.BaseURL, "/"),
		now:       now,
		tracer:    otel.Tracer("github.com/xxxsen/docvault/internal/service"),
	}
}

func (s *ShareService) CreateDocumentShare(ctx context.Context, input CreateDocumentShareInput) (*ShareLink, error) {
	ctx, span := s.tracer.Start(ctx, "ShareService.CreateDocumentShare",
		trace.WithAttributes(attribute.Int64("document.id", input.DocumentID)))
	defer span.End()

	if _, err := s.docs.GetOwned(ctx, input.OwnerUserID, input.DocumentID); err != nil {
		return nil, spanError(span, ownedLookupError(err, "document not found"))
	}
	docID := input.DocumentID
	share, err := s.newShare(model.ShareKindDocument, input.CreateShareInput)
	if err != nil {
		return nil, spanError(span, err)
	}
	share.DocumentID = &docID
	if err := s.persist(ctx, share); err != nil {
		return nil, spanError(span, err)
	}
	logutil.GetLogger(ctx).Info("share link created",
		zap.String("type", share.Type()),
		zap.Int64("document_id", docID),
		zap.Int64("user_id", share.UserID),
	)
	return s.link(share, nil), nil
}

func (s *ShareService) CreateFolderShare(ctx context.Context, input CreateFolderShareInput) (*ShareLink, error) {
	ctx, span := s.tracer.Start(ctx, "ShareService.CreateFolderShare",
		trace.WithAttributes(attribute.Int64("folder.id", input.FolderID)))
	defer span.End()

	if _, err := s.folders.GetOwned(ctx, input.OwnerUserID, input.FolderID); err != nil {
		return nil, spanError(span, ownedLookupError(err, "folder not found"))
	}
	share, err := s.newShare(model.ShareKindFolder, input.CreateShareInput)
	if err != nil {
		return nil, spanError(span, err)
	}
	count, err := s.docs.CountByFolder(ctx, input.FolderID)
	if err != nil {
		return nil, spanError(span, err)
	}
	folderID := input.FolderID
	share.FolderID = &folderID
	if err := s.persist(ctx, share); err != nil {
		return nil, spanError(span, err)
	}
	logutil.GetLogger(ctx).Info("share link created",
		zap.String("type", share.Type()),
		zap.Int64("folder_id", folderID),
		zap.Int("documents_count", count),
		zap.Int64("user_id", share.UserID),
	)
	return s.link(share, &count), nil
}

func (s *ShareService) CreateMultipleShare(ctx context.Context, input CreateMultipleShareInput) (*ShareLink, error) {
	ctx, span := s.tracer.Start(ctx, "ShareService.CreateMultipleShare")
	defer span.End()

	ids := uniqueIDs(input.DocumentIDs)
	if len(ids) == 0 {
		return nil, spanError(span, appErr.Invalid("documentIds must be a non-empty array"))
	}
	span.SetAttributes(attribute.Int("documents.count", len(ids)))
	owned, err := s.docs.ListOwned(ctx, input.OwnerUserID, ids)
	if err != nil {
		return nil, spanError(span, err)
	}
	if len(owned) != len(ids) {
		return nil, spanError(span, appErr.NotFound("some documents not found or not owned by user"))
	}
	share, err := s.newShare(model.ShareKindMultiple, input.CreateShareInput)
	if err != nil {
		return nil, spanError(span, err)
	}
	share.DocumentIDs = ids
	if err := s.persist(ctx, share); err != nil {
		return nil, spanError(span, err)
	}
	count := len(ids)
	logutil.GetLogger(ctx).Info("share link created",
		zap.String("type", share.Type()),
		zap.Int("documents_count", count),
		zap.Int64("user_id", share.UserID),
	)
	return s.link(share, &count), nil
}

// Lookup returns the active share for token. Missing and expired shares
// produce the same error.
func (s *ShareService) Lookup(ctx context.Context, token string) (*model.Share, error) {
	share, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.NotFound("share link not found")
		}
		return nil, err
	}
	if share.Expired(s.now()) {
		logutil.GetLogger(ctx).Debug("share link expired", zap.Int64("share_id", share.ID))
		return nil, appErr.NotFound("share link not found")
	}
	return share, nil
}

// AuthorizeViewer rejects authenticated viewers whose email does not match a
// private share. An empty viewerEmail is an anonymous viewer and is allowed.
func (s *ShareService) AuthorizeViewer(share *model.Share, viewerEmail string) error {
	if !share.IsPrivate() {
		return nil
	}
	viewerEmail = strings.TrimSpace(viewerEmail)
	if viewerEmail == "" {
		return nil
	}
	if share.TargetEmail == nil || !strings.EqualFold(*share.TargetEmail, viewerEmail) {
		return appErr.Forbidden("access denied: this share is addressed to another user")
	}
	return nil
}

// Open hydrates the share subject and records one access. A failed counter
// update is logged and the previous count is reported.
func (s *ShareService) Open(ctx context.Context, share *model.Share) (*ResolvedShare, error) {
	ctx, span := s.tracer.Start(ctx, "ShareService.Open",
		trace.WithAttributes(attribute.String("share.type", share.Type())))
	defer span.End()

	result := &ResolvedShare{}
	switch share.Kind {
	case model.ShareKindDocument:
		doc, err := s.hydrateDocument(ctx, share)
		if err != nil {
			return nil, spanError(span, err)
		}
		result.Document = doc
	case model.ShareKindFolder:
		folder, err := s.hydrateFolder(ctx, share)
		if err != nil {
			return nil, spanError(span, err)
		}
		result.Folder = folder
	case model.ShareKindMultiple:
		docs, err := s.hydrateMultiple(ctx, share)
		if err != nil {
			return nil, spanError(span, err)
		}
		result.Documents = docs
	default:
		return nil, spanError(span, appErr.NotFound("share link not found"))
	}

	count := share.AccessCount
	if next, err := s.shares.IncrementAccessCount(ctx, share.ID); err != nil {
		logutil.GetLogger(ctx).Error("increment share access count failed",
			zap.Int64("share_id", share.ID), zap.Error(err))
	} else {
		count = next
	}
	share.AccessCount = count
	if s.metrics != nil {
		s.metrics.ShareResolved(share.Type())
	}
	result.Share = ShareInfo{
		Token:       share.Token,
		Type:        share.Type(),
		ExpiresAt:   share.ExpiresAt,
		AccessCount: count,
		TargetEmail: share.TargetEmail,
	}
	return result, nil
}

// Resolve looks up an active share and opens it without any viewer check.
func (s *ShareService) Resolve(ctx context.Context, token string) (*ResolvedShare, error) {
	share, err := s.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, share)
}

// ListReceived returns private shares addressed to email, newest first.
// Expired shares are included and flagged.
func (s *ShareService) ListReceived(ctx context.Context, email string) ([]ReceivedShare, error) {
	ctx, span := s.tracer.Start(ctx, "ShareService.ListReceived")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, spanError(span, appErr.Unauthorized("email claim is required"))
	}
	shares, err := s.shares.ListPrivateByEmail(ctx, email)
	if err != nil {
		return nil, spanError(span, err)
	}
	senderIDs := make([]int64, 0, len(shares))
	for _, share := range shares {
		senderIDs = append(senderIDs, share.UserID)
	}
	senders, err := s.users.ListByIDs(ctx, uniqueIDs(senderIDs))
	if err != nil {
		return nil, spanError(span, err)
	}

	now := s.now()
	items := make([]ReceivedShare, 0, len(shares))
	for i := range shares {
		share := &shares[i]
		item := ReceivedShare{
			ID:          share.ID,
			Token:       share.Token,
			Type:        share.Type(),
			CreatedAt:   share.CreatedAt,
			ExpiresAt:   share.ExpiresAt,
			AccessCount: share.AccessCount,
			Expired:     share.Expired(now),
		}
		if sender, ok := senders[share.UserID]; ok {
			item.From = ShareSender{ID: sender.ID, Email: sender.Email, Name: sender.Name}
		} else {
			item.From = ShareSender{ID: share.UserID}
		}
		switch share.Kind {
		case model.ShareKindDocument:
			doc, err := s.hydrateDocument(ctx, share)
			if appErr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, spanError(span, err)
			}
			item.Document = doc
		case model.ShareKindFolder:
			folder, err := s.receivedFolder(ctx, share)
			if appErr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, spanError(span, err)
			}
			item.Folder = folder
		case model.ShareKindMultiple:
			count := len(share.DocumentIDs)
			item.DocumentsCount = &count
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *ShareService) newShare(kind model.ShareKind, input CreateShareInput) (*model.Share, error) {
	target, err := normalizeTarget(input.Visibility, input.TargetEmail)
	if err != nil {
		return nil, err
	}
	token, err := newShareToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &model.Share{
		Token:       token,
		Kind:        kind,
		Visibility:  input.Visibility,
		UserID:      input.OwnerUserID,
		TargetEmail: target,
		ExpiresAt:   shareExpiry(now, input.ExpiresInMinutes),
		CreatedAt:   now,
	}, nil
}

func (s *ShareService) persist(ctx context.Context, share *model.Share) error {
	if err := s.shares.Create(ctx, share); err != nil {
		logutil.GetLogger(ctx).Error("create share link failed",
			zap.String("type", share.Type()), zap.Int64("user_id", share.UserID), zap.Error(err))
		return err
	}
	if s.metrics != nil {
		s.metrics.ShareCreated(share.Type())
	}
	return nil
}

func (s *ShareService) link(share *model.Share, documentsCount *int) *ShareLink {
	return &ShareLink{
		Token:          share.Token,
		URL:            s.baseURL + "/share/" + share.Token,
		Type:           share.Type(),
		TargetEmail:    share.TargetEmail,
		ExpiresAt:      share.ExpiresAt,
		DocumentsCount: documentsCount,
	}
}

func (s *ShareService) hydrateDocument(ctx context.Context, share *model.Share) (*SharedDocument, error) {
	if share.DocumentID == nil {
		return nil, appErr.NotFound("document not found")
	}
	doc, err := s.docs.GetByID(ctx, *share.DocumentID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.NotFound("document not found")
		}
		return nil, err
	}
	items, err := s.sharedDocuments(ctx, []model.Document{*doc})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *ShareService) hydrateFolder(ctx context.Context, share *model.Share) (*SharedFolder, error) {
	folder, err := s.loadFolder(ctx, share)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	companies, err := s.companySummaries(ctx, append(companyIDs(docs), folder.CompanyID))
	if err != nil {
		return nil, err
	}
	items, err := s.renderDocuments(ctx, docs, companies)
	if err != nil {
		return nil, err
	}
	return &SharedFolder{
		ID:        folder.ID,
		Name:      folder.Name,
		Category:  folder.Category,
		CreatedAt: folder.CreatedAt,
		Company:   companyRef(companies, folder.CompanyID),
		Documents: items,
	}, nil
}

func (s *ShareService) hydrateMultiple(ctx context.Context, share *model.Share) ([]SharedDocument, error) {
	docs, err := s.docs.ListByIDs(ctx, share.DocumentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	ordered := make([]model.Document, 0, len(docs))
	for _, id := range share.DocumentIDs {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return s.sharedDocuments(ctx, ordered)
}

func (s *ShareService) receivedFolder(ctx context.Context, share *model.Share) (*ReceivedFolder, error) {
	folder, err := s.loadFolder(ctx, share)
	if err != nil {
		return nil, err
	}
	count, err := s.docs.CountByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	return &ReceivedFolder{ID: folder.ID, Name: folder.Name, DocumentsCount: count}, nil
}

func (s *ShareService) loadFolder(ctx context.Context, share *model.Share) (*model.Folder, error) {
	if share.FolderID == nil {
		return nil, appErr.NotFound("folder not found")
	}
	folder, err := s.folders.GetByID(ctx, *share.FolderID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.NotFound("folder not found")
		}
		return nil, err
	}
	return folder, nil
}

func (s *ShareService) sharedDocuments(ctx context.Context, docs []model.Document) ([]SharedDocument, error) {
	companies, err := s.companySummaries(ctx, companyIDs(docs))
	if err != nil {
		return nil, err
	}
	return s.renderDocuments(ctx, docs, companies)
}

func (s *ShareService) renderDocuments(ctx context.Context, docs []model.Document, companies map[int64]model.CompanySummary) ([]SharedDocument, error) {
	items := make([]SharedDocument, 0, len(docs))
	for _, doc := range docs {
		items = append(items, SharedDocument{
			ID:        doc.ID,
			Name:      doc.Name,
			Category:  doc.Category,
			FileURL:   s.fileURL(ctx, doc),
			MimeType:  doc.MimeType,
			CreatedAt: doc.CreatedAt,
			Company:   companyRef(companies, doc.CompanyID),
		})
	}
	return items, nil
}

func (s *ShareService) companySummaries(ctx context.Context, ids []int64) (map[int64]model.CompanySummary, error) {
	ids = uniqueIDs(ids)
	if s.companies == nil || len(ids) == 0 {
		return map[int64]model.CompanySummary{}, nil
	}
	return s.companies.ListSummaries(ctx, ids)
}

// fileURL renders the object key through the configured store and falls
// back to the persisted url.
func (s *ShareService) fileURL(ctx context.Context, doc model.Document) string {
	if s.files == nil || doc.FileName == "" {
		return doc.FileURL
	}
	url, err := s.files.URL(ctx, doc.FileName)
	if err != nil {
		logutil.GetLogger(ctx).Warn("render file url failed",
			zap.String("store", s.files.Type()), zap.Int64("document_id", doc.ID), zap.Error(err))
		return doc.FileURL
	}
	return url
}

func normalizeTarget(visibility model.Visibility, email string) (*string, error) {
	if _, err := model.ParseVisibility(string(visibility)); err != nil {
		return nil, appErr.Invalid("visibility must be public or private")
	}
	if visibility != model.VisibilityPrivate {
		return nil, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, appErr.Invalid("target email is required for private share")
	}
	return &email, nil
}

// shareExpiry treats -1, nil and any other non-positive value as unlimited.
func shareExpiry(now time.Time, minutes *int) time.Time {
	unlimited := now.AddDate(unlimitedShareYears, 0, 0)
	if minutes == nil || *minutes <= 0 {
		return unlimited
	}
	// Durations beyond the unlimited horizon overflow time.Duration.
	if int64(*minutes) >= int64(unlimited.Sub(now)/time.Minute) {
		return unlimited
	}
	return now.Add(time.Duration(*minutes) * time.Minute)
}

func ownedLookupError(err error, msg string) error {
	if appErr.IsNotFound(err) {
		return appErr.NotFound(msg)
	}
	return err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func companyIDs(docs []model.Document) []int64 {
	ids := make([]int64, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.CompanyID)
	}
	return ids
}

func companyRef(companies map[int64]model.CompanySummary, id int64) *model.CompanySummary {
	item, ok := companies[id]
	if !ok {
		return nil
	}
	return &item
}

func spanError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
