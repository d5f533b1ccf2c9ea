package middleware

import (
	"context"
	"log/slog"

	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
)

type auditMiddleware struct {
	passthrough
	logger *slog.Logger
}

// NewAuditMiddleware creates a middleware that logs every write and its
// outcome.
func NewAuditMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &auditMiddleware{passthrough: passthrough{next}, logger: logger}
	}
}

func (m *auditMiddleware) Save(ctx context.Context, def schema.Definition) error {
	err := m.DefinitionStore.Save(ctx, def)
	m.log(ctx, "save", def.Name, err)
	return err
}

func (m *auditMiddleware) Delete(ctx context.Context, name string) error {
	err := m.DefinitionStore.Delete(ctx, name)
	m.log(ctx, "delete", name, err)
	return err
}

func (m *auditMiddleware) log(ctx context.Context, op, name string, err error) {
	if err != nil {
		m.logger.WarnContext(ctx, "definition write failed", "op", op, "record", name, "error", err)
		return
	}
	m.logger.DebugContext(ctx, "definition written", "op", op, "record", name)
}
