package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

// Notifier delivers contract lifecycle events to interested systems.
// Calls happen after the owning transaction commits and are best-effort:
// a failed notification surfaces as a warning, never as a rollback.
type Notifier interface {
	ContractApproved(ctx context.Context, contract *model.Contract) error
}

// LogNotifier is the fallback used when no broker is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ContractApproved(_ context.Context, contract *model.Contract) error {
	n.log.Info().
		Uint("contract_id", contract.ID).
		Str("contract_number", contract.ContractNumber).
		Msg("contract approved")
	return nil
}
