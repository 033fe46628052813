package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/slate-hq/slate-api/internal/dto"
)

// ErrUploadTooLarge indicates a file over the configured size limit.
var ErrUploadTooLarge = errors.New("file exceeds the upload size limit")

// ErrUploadNotImage indicates a file that is not a supported image type.
var ErrUploadNotImage = errors.New("only image uploads are supported")

// AttachmentStorage stores an uploaded file and returns an opaque ID and
// a public URL for it.
type AttachmentStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (id, url string, err error)
}

// UploadService validates and stores message image attachments.
type UploadService interface {
	Upload(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.UploadResponse, error)
}

type uploadService struct {
	storage   AttachmentStorage
	maxSizeMB int
	tracer    trace.Tracer
	log       zerolog.Logger
}

func NewUploadService(storage AttachmentStorage, maxSizeMB int, log zerolog.Logger) UploadService {
	return &uploadService{
		storage:   storage,
		maxSizeMB: maxSizeMB,
		tracer:    otel.Tracer("upload-service"),
		log:       log.With().Str("component", "upload-service").Logger(),
	}
}

func (s *uploadService) Upload(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload")
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}

	maxBytes := int64(s.maxSizeMB) << 20
	if file.Size > maxBytes {
		return nil, ErrUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Size from the multipart header is client-supplied; cap the read too.
	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrUploadTooLarge
	}

	kind := mimetype.Detect(data)
	if !isImage(kind) {
		return nil, ErrUploadNotImage
	}

	id, url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Str("attachment_id", id).Str("mime", kind.String()).Msg("attachment uploaded")
	return &dto.UploadResponse{ID: id, URL: url}, nil
}

var imageMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

func isImage(kind *mimetype.MIME) bool {
	for k := kind; k != nil; k = k.Parent() {
		if _, ok := imageMIMEs[k.String()]; ok {
			return true
		}
	}
	return false
}
