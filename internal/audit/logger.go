package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
)

// Logger records audit entries best-effort. A failed write never fails
// the operation that produced it; it is logged and dropped.
type Logger struct {
	repo *repository.AuditRepository
	log  zerolog.Logger
}

func NewLogger(repo *repository.AuditRepository, log zerolog.Logger) *Logger {
	return &Logger{repo: repo, log: log}
}

func (l *Logger) Log(ctx context.Context, action, description string, actorID, relatedID uint, relatedType string) {
	entry := &model.AuditEntry{
		ID:          uuid.New(),
		Action:      action,
		Description: description,
		ActorID:     actorID,
		RelatedID:   relatedID,
		RelatedType: relatedType,
		CreatedAt:   time.Now(),
	}
	if err := l.repo.Insert(ctx, entry); err != nil {
		l.log.Error().Err(err).
			Str("action", action).
			Uint("actor_id", actorID).
			Msg("audit write failed")
	}
}
