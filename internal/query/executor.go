package query

import (
	"context"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Executor runs validated intents against the menu store.
type Executor struct {
	db           *database.SQLClient
	logger       logger.Logger
	defaultLimit int
}

func NewExecutor(db *database.SQLClient, log logger.Logger, defaultLimit int) *Executor {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Executor{
		db:           db,
		logger:       logger.Component(log, "query-executor"),
		defaultLimit: defaultLimit,
	}
}

// Execute compiles v and returns the rows in select order.
func (e *Executor) Execute(ctx context.Context, v ValidatedIntent) (rows []database.Row, err error) {
	ctx, span := observability.StartSpan(ctx, "query.Execute",
		attribute.String("table", v.intent.Table),
	)
	defer func() { observability.EndSpan(span, err) }()

	stmt, err := Compile(v, e.db.Dialect, e.defaultLimit)
	if err != nil {
		return nil, errors.NewDataAccessFailureError("compile", err)
	}

	for _, f := range stmt.Dropped {
		e.logger.Warn("Filter dropped: value is not a list", map[string]interface{}{
			"column": f.Column,
			"op":     f.Op,
			"value":  f.Value,
		})
	}

	e.logger.Debug("Executing structured query", map[string]interface{}{
		"sql":      stmt.SQL,
		"argCount": len(stmt.Args),
	})

	rows, err = e.db.QueryMaps(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.NewDataAccessFailureError("select", err)
	}

	metrics.QueryRows.WithLabelValues(metrics.PathStructured).Observe(float64(len(rows)))
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}
