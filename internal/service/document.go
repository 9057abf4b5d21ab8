package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docsearch/internal/auth"
	"docsearch/internal/extract"
	"docsearch/internal/model"
	"docsearch/internal/repository"
	"docsearch/internal/storage"
)

var (
	ErrFileRequired     = errors.New("file is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrDocIDRequired    = errors.New("docId is required")
	ErrFileURLRequired  = errors.New("fileUrl is required")
	ErrPathCollision    = errors.New("storage path already occupied")
	ErrNotFound         = errors.New("document not found")
)

// searchLimit caps full-text results; backend relevance order is preserved
// within the cap.
const searchLimit = 50

// UploadInput carries one upload request through the workflow. Content may
// hold pre-extracted text supplied by the caller; when empty, the extraction
// dispatcher runs against Data.
type UploadInput struct {
	FileName string
	Data     []byte
	Content  string
	Title    string
	Category string
	Topic    string
}

// TextExtractor is the service's view of the extraction dispatcher.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, fileName string) (string, error)
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload runs the sequential workflow: validate, resolve session, extract
	// text, write the binary, then insert the record. A failed insert rolls
	// the binary back so no orphaned object survives the call.
	Upload(ctx context.Context, sess *auth.Session, in UploadInput) (*model.Document, error)

	// Search runs a user-scoped full-text query in websearch syntax. An
	// empty or whitespace-only query returns an empty slice with no backend
	// call; zero matches is not an error.
	Search(ctx context.Context, sess *auth.Session, query string) ([]model.Document, error)

	// ListAll returns every document owned by the session user, newest first.
	ListAll(ctx context.Context, sess *auth.Session) ([]model.Document, error)

	// Get returns one document by id. Documents owned by other users are
	// reported as ErrNotFound, never as a permission error.
	Get(ctx context.Context, sess *auth.Session, id string) (*model.Document, error)

	// AdminDelete removes a document's binary and record using privileged
	// credentials, bypassing per-user scoping. Deleting an already-absent
	// binary is idempotent success.
	AdminDelete(ctx context.Context, docID, fileURL string) error
}

type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	extractor TextExtractor
	bucket    string
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, extractor TextExtractor, bucket string) DocumentService {
	return &documentService{store: store, repo: repo, extractor: extractor, bucket: bucket}
}

func (s *documentService) Upload(ctx context.Context, sess *auth.Session, in UploadInput) (*model.Document, error) {
	// Stage 1: validation, no side effects.
	if len(in.Data) == 0 {
		return nil, ErrFileRequired
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, ErrCategoryRequired
	}
	if !extract.IsSupported(in.FileName) {
		return nil, extract.ErrUnsupportedType
	}

	// Stage 2: session.
	if sess == nil || sess.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}

	// Stage 3: text. Caller-supplied content goes through the same
	// normalization as dispatcher output, so the persistence invariant
	// (non-empty, sentinel-free) holds either way. Any failure aborts
	// before the first storage call.
	content, err := s.resolveContent(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	// Stage 4: binary upload, keyed {userId}/{timestamp}.{ext}. The stat
	// guard refuses to overwrite a prior upload that landed on the same
	// millisecond.
	ext := strings.ToLower(filepath.Ext(in.FileName))
	key := fmt.Sprintf("%s/%d%s", sess.UserID, time.Now().UnixMilli(), ext)

	if _, err := s.store.Stat(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathCollision, key)
	} else if !errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("check storage path: %w", err)
	}

	if _, err := s.store.Put(ctx, key, bytes.NewReader(in.Data), storage.PutObjectOptions{
		Size:        int64(len(in.Data)),
		ContentType: contentTypeFor(ext),
		Metadata: map[string]string{
			"original-filename": in.FileName,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	// Stage 5: public locator for the object just written.
	fileURL := s.store.PublicURL(key)

	// Stage 6: record insert, with compensating deletion of the binary on
	// failure so a record exists iff its binary does.
	doc := &model.Document{
		ID:        uuid.New().String(),
		FileName:  strings.TrimSpace(in.Title),
		FileURL:   fileURL,
		Content:   content,
		Category:  strings.TrimSpace(in.Category),
		Topic:     strings.TrimSpace(in.Topic),
		UserID:    sess.UserID,
		UserEmail: sess.Email,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) resolveContent(ctx context.Context, in UploadInput) (string, error) {
	if strings.TrimSpace(in.Content) != "" {
		return extract.Normalize(in.Content)
	}
	return s.extractor.Extract(ctx, in.Data, in.FileName)
}

func (s *documentService) Search(ctx context.Context, sess *auth.Session, query string) ([]model.Document, error) {
	if sess == nil || sess.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	if strings.TrimSpace(query) == "" {
		return []model.Document{}, nil
	}
	return s.repo.Search(ctx, sess.UserID, query, searchLimit)
}

func (s *documentService) ListAll(ctx context.Context, sess *auth.Session) ([]model.Document, error) {
	if sess == nil || sess.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, sess.UserID)
}

func (s *documentService) Get(ctx context.Context, sess *auth.Session, id string) (*model.Document, error) {
	if sess == nil || sess.UserID == "" {
		return nil, auth.ErrUnauthenticated
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.UserID != sess.UserID {
		// Existence of other users' documents is not disclosed.
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) AdminDelete(ctx context.Context, docID, fileURL string) error {
	if docID == "" {
		return ErrDocIDRequired
	}
	if fileURL == "" {
		return ErrFileURLRequired
	}

	// Reject unparseable URLs before touching storage or the database.
	key, err := storage.ObjectKeyFromURL(s.bucket, fileURL)
	if err != nil {
		return err
	}

	// Binary first. An absent binary downgrades to a warning: the record
	// still goes, favoring metadata consistency over all-or-nothing.
	if _, err := s.store.Stat(ctx, key); err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("check storage object: %w", err)
		}
		logWarn(map[string]any{
			"component": "service",
			"event":     "admin_delete_object_absent",
			"key":       key,
			"doc_id":    docID,
		})
	} else if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete storage object: %w", err)
	}

	if err := s.repo.Delete(ctx, docID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// contentTypeFor maps the supported extensions to MIME types, falling back to
// the platform registry and then octet-stream.
func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func logWarn(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["level"] = "warn"
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal warn log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
