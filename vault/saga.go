package vault

import (
	"context"

	"go.uber.org/zap"

	"github.com/jmgilman/go/errors"
)

// SagaState tracks how far an upload progressed. States only move forward;
// Compensating and Failed are entered when persistence fails after the blob
// was already written.
type SagaState string

const (
	SagaReceived     SagaState = "received"
	SagaUploading    SagaState = "uploading"
	SagaUploaded     SagaState = "uploaded"
	SagaPersisting   SagaState = "persisting"
	SagaCommitted    SagaState = "committed"
	SagaCompensating SagaState = "compensating"
	SagaFailed       SagaState = "failed"
)

// UploadSaga runs the two-step upload: write bytes to the blob store, then
// persist the record. When the second step fails the first is compensated by
// deleting the blob, so a rejected upload leaves no orphaned object behind.
type UploadSaga struct {
	blobs  BlobStore
	logger *zap.Logger

	state SagaState
}

func NewUploadSaga(blobs BlobStore, logger *zap.Logger) *UploadSaga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadSaga{blobs: blobs, logger: logger, state: SagaReceived}
}

// State returns the last state the saga reached.
func (s *UploadSaga) State() SagaState { return s.state }

// Run uploads data into folder and invokes persist with the resulting blob
// reference. On persist failure the blob is deleted best-effort and the
// persist error is returned unchanged; a compensation failure is logged, never
// surfaced, since the caller's failure is the persist error.
func (s *UploadSaga) Run(ctx context.Context, data []byte, folder string, persist func(context.Context, BlobRef) (*Photo, error)) (*Photo, error) {
	if len(data) == 0 {
		s.state = SagaFailed
		return nil, errors.New(errors.CodeInvalidInput, "upload requires a non-empty payload")
	}

	s.state = SagaUploading
	ref, err := s.blobs.Upload(ctx, data, folder)
	if err != nil {
		s.state = SagaFailed
		return nil, errors.Wrap(err, errors.CodeNetwork, "blob upload failed")
	}
	s.state = SagaUploaded

	s.state = SagaPersisting
	photo, err := persist(ctx, ref)
	if err != nil {
		s.compensate(ctx, ref)
		return nil, err
	}

	s.state = SagaCommitted
	return photo, nil
}

func (s *UploadSaga) compensate(ctx context.Context, ref BlobRef) {
	s.state = SagaCompensating
	if err := s.blobs.Delete(ctx, ref.ID); err != nil {
		s.logger.Error("orphaned blob, compensation delete failed",
			zap.String("blob_id", ref.ID),
			zap.Error(err))
	}
	s.state = SagaFailed
}
